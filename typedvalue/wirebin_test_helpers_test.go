package typedvalue

import (
	"testing"

	"github.com/metarpc/metarpc/wirebin"
)

func newTestWriter(t *testing.T) *wirebin.Writer {
	t.Helper()
	return &wirebin.Writer{}
}

func newTestReader(w *wirebin.Writer) *wirebin.Reader {
	return wirebin.NewReader(w.Bytes())
}
