package vm

import "testing"

func TestChunkWriteAndAddConstant(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpConstant, 1)
	idx := c.AddConstant(NumberValue(3.14))
	c.Write(byte(idx), 1)
	c.WriteOp(OpReturn, 2)

	if len(c.Code) != 3 {
		t.Fatalf("expected 3 bytes, got %d", len(c.Code))
	}
	if len(c.Lines) != len(c.Code) {
		t.Fatalf("lines must stay parallel to code")
	}
	if c.Lines[2] != 2 {
		t.Fatalf("expected OP_RETURN on line 2, got %d", c.Lines[2])
	}
	if c.Constants[idx].AsNumber() != 3.14 {
		t.Fatalf("expected constant to round-trip")
	}
}
