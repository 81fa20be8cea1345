package manifest

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// schema constrains a decoded manifest. TOML decoding is permissive (unknown
// keys are dropped, any string passes), so the structural checks live here.
const schema = `
{
	contract: {
		source: string
	}
	build: {
		output:          string & !=""
		profile:         "default" | "legacy"
		"skip-optimize": bool
		"scratch-dir":   string
	}
}
`

// validate checks the manifest against the CUE schema. Called after defaults
// are applied, so every field is concrete.
func validate(m *Manifest) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schema)
	if err := schemaVal.Err(); err != nil {
		return fmt.Errorf("manifest schema is broken: %w", err)
	}

	unified := schemaVal.Unify(ctx.Encode(m))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid manifest: %w", err)
	}
	return nil
}
