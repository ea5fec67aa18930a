package tools

import (
	"context"
	"encoding/json"

	"github.com/MykalMachon/skilled-agent/internal/fsops"
)

type RunScriptInput struct {
	Path string   `json:"path" jsonschema_description:"Path to an executable script inside the skills root, nested under a skill subfolder (<root>/<skill>/<subpath>)."`
	Args []string `json:"args,omitempty" jsonschema_description:"Optional arguments passed to the script."`
}

var RunScriptDefinition = ToolDefinition{
	Name:        "run_script",
	Description: "Execute a script that belongs to a skill. The script must live under a subfolder of a skill directory inside the skills root. Runs with a 10 second timeout; stdout is returned on success, failures are described in the result.",
	InputSchema: RunScriptInputSchema,
	Function:    RunScript,
}

var RunScriptInputSchema = GenerateSchema[RunScriptInput]()

func RunScript(ctx context.Context, input json.RawMessage) (string, error) {
	var in RunScriptInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", err
	}
	return fsops.RunScript(ctx, in.Path, in.Args)
}
