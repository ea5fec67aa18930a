package tools

import (
	"context"
	"encoding/json"

	"github.com/MykalMachon/skilled-agent/internal/fsops"
)

type ReadFileInput struct {
	Path string `json:"path" jsonschema_description:"Path of the text file to read."`
}

var ReadFileDefinition = ToolDefinition{
	Name:        "read_file",
	Description: "Read the full contents of a text file. Environment files, version-control internals, dependency caches, and binary image/pdf files are refused; files over 1MB are reported as too large.",
	InputSchema: ReadFileInputSchema,
	Function:    ReadFile,
}

var ReadFileInputSchema = GenerateSchema[ReadFileInput]()

func ReadFile(ctx context.Context, input json.RawMessage) (string, error) {
	var in ReadFileInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return fsops.ReadFile(in.Path)
}
