package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `robolab keeps a catalogue of robots: name, label, year of manufacture and type.

Rules:
- Names are unique among active robots, compared without case or surrounding spaces.
- Years run from 1950 to the current year. Types: industrial, service, medical, educational, other.
- robot_archive hides a robot and frees its name; robot_unarchive fails if the name was taken meanwhile.
- robot_delete is permanent.

Workflow:
1) robot_list (q, sort, order, limit, offset) to browse.
2) robot_name_available before robot_create or a rename.
3) robot_export writes a JSON file and returns its location.

Errors come back as "CODE: message" with codes DUPLICATE_NAME, NOT_FOUND, VALIDATION,
STORAGE_UNAVAILABLE, NOTHING_TO_EXPORT and INTERNAL.

Docs: robolab://docs/index
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "robolab://docs/index",
		Name:        "docs_index",
		Title:       "robolab tool guide",
		Description: "Field rules, list options and error codes for the robot tools.",
		Content: `# robolab tools

## Fields

| field | rule |
|---|---|
| name | 2 to 50 characters after trimming; unique among active robots ignoring case |
| label | 3 to 100 characters after trimming |
| year | 1950 to the current year |
| type | industrial, service, medical, educational, other |

## Listing

` + "`robot_list`" + ` accepts ` + "`q`" + ` (substring of name, ASCII case-insensitive,
` + "`%`" + ` and ` + "`_`" + ` match literally), ` + "`sort`" + ` (name, year, created_at; default name),
` + "`order`" + ` (ASC or DESC), ` + "`limit`" + ` (default 100), ` + "`offset`" + ` and ` + "`include_archived`" + `.
Robots with equal sort keys come back in creation order.

## Archiving

Archiving keeps the row but hides it from default reads and frees the name.
Unarchiving fails with DUPLICATE_NAME when an active robot took the name.

## Export

` + "`robot_export`" + ` writes ` + "`robots_export_<unix-millis>.json`" + ` into the configured directory.
An empty catalogue returns NOTHING_TO_EXPORT.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
