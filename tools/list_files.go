package tools

import (
	"context"
	"encoding/json"

	"github.com/MykalMachon/skilled-agent/internal/fsops"
)

type ListFilesInput struct {
	Path string `json:"path,omitempty" jsonschema_description:"Directory to list (defaults to the current directory)."`
}

var ListFilesDefinition = ToolDefinition{
	Name:        "list_files",
	Description: "List the entries of a directory (non-recursive). Directories are suffixed with /. Entry order is not guaranteed.",
	InputSchema: ListFilesInputSchema,
	Function:    ListFiles,
}

var ListFilesInputSchema = GenerateSchema[ListFilesInput]()

func ListFiles(ctx context.Context, input json.RawMessage) (string, error) {
	var in ListFilesInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return fsops.ListDir(in.Path)
}
