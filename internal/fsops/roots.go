package fsops

import (
	"os"
	"sync"

	"github.com/MykalMachon/skilled-agent/internal/safety"
)

// EnvSkillsRoot overrides the default "skills" directory.
const EnvSkillsRoot = "AGENT_SKILLS_ROOT"

var (
	rootOnce      sync.Once
	absSkillsRoot string
	initRootErr   error
)

func initRoot() {
	absSkillsRoot, initRootErr = safety.ResolveSkillsRoot(os.Getenv(EnvSkillsRoot))
}

// SkillsRoot returns the cached absolute skills root, initialising it once on first use.
func SkillsRoot() (string, error) {
	rootOnce.Do(initRoot)
	return absSkillsRoot, initRootErr
}
