package asm_test

import (
	"strings"
	"testing"

	"github.com/vil-project/vil/asm"
	"github.com/vil-project/vil/vm"
)

func TestAssembleSimpleAdd(t *testing.T) {
	code := `
	( push two scalars and add them )
	IMMS 1000000000000000000
	IMMS 2000000000000000000
	ADD 1
	`
	prog, labels, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(labels) != 0 {
		t.Fatalf("expected no labels, got %d", len(labels))
	}
	if len(prog) != 6 {
		t.Fatalf("expected 6 words (3 opcodes + 3 args), got %d", len(prog))
	}
	if op, ok := vm.OpByMnemonic("IMMS"); !ok || vm.Op(prog[0].Lo) != op {
		t.Fatalf("word 0: expected IMMS opcode")
	}
	if op, ok := vm.OpByMnemonic("ADD"); !ok || vm.Op(prog[4].Lo) != op {
		t.Fatalf("word 4: expected ADD opcode")
	}
	if prog[5] != vm.LabelFromUint64(1) {
		t.Fatalf("word 5: expected ADD arg 1, got %+v", prog[5])
	}
}

func TestAssembleLabelDefinitionAndReference(t *testing.T) {
	code := `
	:pool
	LDV pool
	`
	prog, labels, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	key, ok := labels["pool"]
	if !ok {
		t.Fatal("expected label \"pool\" to be defined")
	}
	if len(prog) != 2 {
		t.Fatalf("expected 2 words, got %d", len(prog))
	}
	if prog[1] != key {
		t.Fatalf("LDV argument = %+v, want %+v (the label's own key)", prog[1], key)
	}
}

func TestAssembleEquConstant(t *testing.T) {
	code := `
	.equ HUNDRED 100
	ZEROS HUNDRED
	`
	prog, _, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog[1] != vm.LabelFromUint64(100) {
		t.Fatalf("ZEROS argument = %+v, want 100", prog[1])
	}
}

func TestAssembleForwardReference(t *testing.T) {
	code := `
	B fwd 0 0 1
	:fwd
	NOP
	`
	prog, labels, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog[1] != labels["fwd"] {
		t.Fatalf("B's prg argument = %+v, want forward label value %+v", prog[1], labels["fwd"])
	}
}

func TestAssembleUndefinedKeyIsError(t *testing.T) {
	_, _, err := asm.AssembleString("test", "LDV nosuch")
	if err == nil {
		t.Fatal("expected an error for an undefined key")
	}
	if _, ok := err.(asm.ErrAsm); !ok {
		t.Fatalf("expected asm.ErrAsm, got %T", err)
	}
}

func TestAssembleUnknownMnemonicIsError(t *testing.T) {
	_, _, err := asm.AssembleString("test", "FROB 1")
	if err == nil {
		t.Fatal("expected an error for an unknown mnemonic")
	}
}

func TestAssembleCommentsAreSkipped(t *testing.T) {
	code := `
	( this is a comment
	  spanning multiple lines )
	NOP
	`
	prog, _, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(prog) != 1 {
		t.Fatalf("expected 1 word, got %d", len(prog))
	}
}

func TestAssembleDecimalLiteralScales(t *testing.T) {
	prog, _, err := asm.AssembleString("test", "VPUSH 3.5")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(prog) != 2 {
		t.Fatalf("expected 2 words, got %d", len(prog))
	}
}

func TestAssembleFoldReferencesSubprogram(t *testing.T) {
	code := `
	.equ SUMPRG 7
	FOLD SUMPRG 1 1 0
	`
	prog, _, err := asm.AssembleString("test", code)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if prog[1] != vm.LabelFromUint64(7) {
		t.Fatalf("FOLD prg argument = %+v, want 7", prog[1])
	}
}

func TestAssembleReaderEquivalence(t *testing.T) {
	code := "NOP"
	p1, _, err := asm.Assemble("r", strings.NewReader(code))
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	p2, _, err := asm.AssembleString("s", code)
	if err != nil {
		t.Fatalf("AssembleString: %v", err)
	}
	if len(p1) != len(p2) || p1[0] != p2[0] {
		t.Fatalf("Assemble and AssembleString disagree: %+v vs %+v", p1, p2)
	}
}
