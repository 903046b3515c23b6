package script

import (
	"testing"

	"ownlint/internal/diag"
	"ownlint/internal/source"
	"ownlint/internal/testkit"
)

const maxFuzzInput = 1 << 16

func FuzzParse(f *testing.F) {
	seeds := []string{
		"",
		"# comment\n",
		"bind x\nuse x\n",
		"param p 'a\nref r = &'a p\nreturn r\n",
		"ref r = &mut x\nmove d <- x\n",
		"scope {\nbind y\n}\n",
		"}\nscope {\n",
		"bind x = some long value\nmutate x\ndrop x\n",
		"move <- x\nref = &\nparam 'a\n",
		"bind café\nuse café\n",
	}
	for _, seed := range seeds {
		f.Add([]byte(seed))
	}

	f.Fuzz(func(t *testing.T, input []byte) {
		if len(input) > maxFuzzInput {
			input = input[:maxFuzzInput]
		}
		fs := source.NewFileSet()
		fileID := fs.AddVirtual("fuzz.own", append([]byte(nil), input...))
		file := fs.Get(fileID)

		bag := diag.NewBag(128)
		prog := Parse(file, diag.BagReporter{Bag: bag})
		if prog == nil {
			t.Fatalf("Parse must always return a program")
		}
		if err := testkit.CheckProgramInvariants(prog, file); err != nil {
			t.Fatalf("invariant violated: %v", err)
		}
	})
}
