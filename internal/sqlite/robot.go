package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/robolab/internal/domain/robot"
)

const robotColumns = `id, name, label, year, type, created_at, updated_at, archived`

var sortColumns = map[robot.SortField]string{
	robot.SortName:      "name",
	robot.SortYear:      "year",
	robot.SortCreatedAt: "created_at",
}

// RobotRepository implements robot.Repository for SQLite
type RobotRepository struct {
	db  *DB
	now func() time.Time
}

// NewRobotRepository creates a new RobotRepository
func NewRobotRepository(db *DB) *RobotRepository {
	return &RobotRepository{db: db, now: time.Now}
}

// Create inserts a new active robot and returns the stored row.
func (r *RobotRepository) Create(ctx context.Context, in robot.Input) (*robot.Robot, error) {
	in = robot.Normalize(in)
	id := uuid.NewString()
	now := r.now().Unix()

	query := `
		INSERT INTO robots (id, name, label, year, type, created_at, updated_at, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0)
	`
	_, err := r.db.ExecContext(ctx, query, id, in.Name, in.Label, in.Year, string(in.Type), now, now)
	if isUniqueViolation(err) {
		return nil, &robot.DuplicateNameError{Name: in.Name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create robot: %w", err)
	}

	return r.mustGet(ctx, id)
}

// Update writes the supplied patch fields and bumps updated_at.
func (r *RobotRepository) Update(ctx context.Context, id string, patch robot.Patch) (*robot.Robot, error) {
	patch = robot.NormalizePatch(patch)

	var (
		sets []string
		args []any
	)
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Label != nil {
		sets = append(sets, "label = ?")
		args = append(args, *patch.Label)
	}
	if patch.Year != nil {
		sets = append(sets, "year = ?")
		args = append(args, *patch.Year)
	}
	if patch.Type != nil {
		sets = append(sets, "type = ?")
		args = append(args, string(*patch.Type))
	}
	sets = append(sets, "updated_at = MAX(?, updated_at + 1)")
	args = append(args, r.now().Unix(), id)

	query := `UPDATE robots SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		name := ""
		if patch.Name != nil {
			name = *patch.Name
		}
		return nil, &robot.DuplicateNameError{Name: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update robot: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}

	return r.mustGet(ctx, id)
}

// Delete permanently removes a robot.
func (r *RobotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM robots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete robot: %w", err)
	}
	return requireAffected(res)
}

// Archive hides a robot from default reads and frees its name.
func (r *RobotRepository) Archive(ctx context.Context, id string) (*robot.Robot, error) {
	return r.setArchived(ctx, id, true)
}

// Unarchive restores a robot. It fails with a duplicate name error when an
// active robot took the name in the meantime.
func (r *RobotRepository) Unarchive(ctx context.Context, id string) (*robot.Robot, error) {
	return r.setArchived(ctx, id, false)
}

func (r *RobotRepository) setArchived(ctx context.Context, id string, archived bool) (*robot.Robot, error) {
	query := `UPDATE robots SET archived = ?, updated_at = MAX(?, updated_at + 1) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, boolToInt(archived), r.now().Unix(), id)
	if isUniqueViolation(err) {
		rec, getErr := r.Get(ctx, id, true)
		if getErr != nil || rec == nil {
			return nil, robot.ErrDuplicateName
		}
		return nil, &robot.DuplicateNameError{Name: rec.Name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to set archived: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return nil, err
	}
	return r.mustGet(ctx, id)
}

// Get returns the robot with the given id, or nil when it does not exist.
// Archived robots are only returned when includeArchived is set.
func (r *RobotRepository) Get(ctx context.Context, id string, includeArchived bool) (*robot.Robot, error) {
	query := `SELECT ` + robotColumns + ` FROM robots WHERE id = ?`
	if !includeArchived {
		query += ` AND archived = 0`
	}

	rec, err := scanRobot(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get robot: %w", err)
	}
	return rec, nil
}

// List returns one page of robots. Equal sort keys keep insertion order.
func (r *RobotRepository) List(ctx context.Context, opts robot.ListOptions) ([]robot.Robot, error) {
	opts = opts.Normalized()

	var (
		where []string
		args  []any
	)
	if !opts.IncludeArchived {
		where = append(where, "archived = 0")
	}
	if opts.Q != "" {
		where = append(where, `name LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(opts.Q)+"%")
	}

	query := `SELECT ` + robotColumns + ` FROM robots`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	// Column and direction come from closed sets, never from raw input.
	query += fmt.Sprintf(` ORDER BY %s %s, rowid ASC LIMIT ? OFFSET ?`, sortColumns[opts.Sort], opts.Order)
	args = append(args, opts.Limit, opts.Offset)

	return r.query(ctx, query, args...)
}

// Count returns the number of active robots, or all robots when
// includeArchived is set.
func (r *RobotRepository) Count(ctx context.Context, includeArchived bool) (int, error) {
	query := `SELECT COUNT(*) FROM robots`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count robots: %w", err)
	}
	return n, nil
}

// IsNameUnique reports whether no active robot other than excludeID uses
// name, ignoring case and surrounding whitespace.
func (r *RobotRepository) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	query := `SELECT COUNT(*) FROM robots WHERE name = ? COLLATE NOCASE AND archived = 0 AND id != ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, strings.TrimSpace(name), excludeID).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check name: %w", err)
	}
	return n == 0, nil
}

// Export returns every matching robot ordered by name.
func (r *RobotRepository) Export(ctx context.Context, includeArchived bool) ([]robot.Robot, error) {
	query := `SELECT ` + robotColumns + ` FROM robots`
	if !includeArchived {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name ASC, rowid ASC`
	return r.query(ctx, query)
}

func (r *RobotRepository) query(ctx context.Context, query string, args ...any) ([]robot.Robot, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list robots: %w", err)
	}
	defer rows.Close()

	out := []robot.Robot{}
	for rows.Next() {
		rec, err := scanRobot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan robot: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate robots: %w", err)
	}
	return out, nil
}

func (r *RobotRepository) mustGet(ctx context.Context, id string) (*robot.Robot, error) {
	rec, err := r.Get(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, robot.ErrNotFound
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRobot(row rowScanner) (*robot.Robot, error) {
	var (
		rec      robot.Robot
		kind     string
		archived int
	)
	if err := row.Scan(&rec.ID, &rec.Name, &rec.Label, &rec.Year, &kind, &rec.CreatedAt, &rec.UpdatedAt, &archived); err != nil {
		return nil, err
	}
	rec.Type = robot.Type(kind)
	rec.Archived = archived != 0
	return &rec, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return robot.ErrNotFound
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
