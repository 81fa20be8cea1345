package toolchain

import (
	"os/exec"
	"strings"
)

// ValidatorTool is the wabt static validator.
const ValidatorTool = "wasm-validate"

// Sign-extension ops are the post-MVP instruction category legacy NEAR
// runtimes reject; the validator is told to disallow them.
const disallowFlag = "--disable-sign-extension"

// Verify checks that the module at path contains no sign-extension
// instructions. An absent wasm-validate is reported as *ToolNotFound; a
// violation is *VerificationFailed and always fatal.
func Verify(path string) error {
	tool, err := exec.LookPath(ValidatorTool)
	if err != nil {
		return &ToolNotFound{Tool: ValidatorTool}
	}

	out, err := exec.Command(tool, disallowFlag, path).CombinedOutput()
	if err != nil {
		return &VerificationFailed{Output: strings.TrimSpace(string(out))}
	}
	return nil
}
