package postgresql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dbplat/internal/core"
)

func TestSequenceFromDefault(t *testing.T) {
	tests := []struct {
		def  string
		want string
		ok   bool
	}{
		{"nextval('users_id_seq'::regclass)", "users_id_seq", true},
		{"nextval('billing.invoice_seq'::regclass)", "invoice_seq", true},
		{`nextval('"Mixed_seq"'::regclass)`, "Mixed_seq", true},
		{"now()", "", false},
		{"'nextval'::text", "", false},
		{"nextval(''::regclass)", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.def, func(t *testing.T) {
			got, ok := SequenceFromDefault(tt.def)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckExpression(t *testing.T) {
	assert.Equal(t, "price > 0", CheckExpression("CHECK (price > 0)"))
	assert.Equal(t, "(a > 0) AND (b > 0)", CheckExpression("CHECK ((a > 0) AND (b > 0))"))
	assert.Equal(t, "qty < 10", CheckExpression("CHECK (qty < 10) NOT VALID"))
}

func TestParseTriggerDef(t *testing.T) {
	tests := []struct {
		name   string
		def    string
		timing string
		events []string
	}{
		{
			name:   "before single",
			def:    "CREATE TRIGGER t BEFORE DELETE ON public.a FOR EACH ROW EXECUTE FUNCTION f()",
			timing: "BEFORE",
			events: []string{"DELETE"},
		},
		{
			name:   "update of columns",
			def:    "CREATE TRIGGER t AFTER INSERT OR UPDATE OF price ON a FOR EACH ROW EXECUTE FUNCTION f()",
			timing: "AFTER",
			events: []string{"INSERT", "UPDATE"},
		},
		{
			name:   "instead of on view",
			def:    "CREATE TRIGGER t INSTEAD OF INSERT ON v FOR EACH ROW EXECUTE FUNCTION f()",
			timing: "INSTEAD OF",
			events: []string{"INSERT"},
		},
		{
			name: "unparseable",
			def:  "garbage",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timing, events := ParseTriggerDef(tt.def)
			assert.Equal(t, tt.timing, timing)
			assert.Equal(t, tt.events, events)
		})
	}
}

func TestIndexType(t *testing.T) {
	assert.Equal(t, core.IndexTypeBTree, IndexType("btree"))
	assert.Equal(t, core.IndexTypeHash, IndexType("hash"))
	assert.Equal(t, core.IndexTypeGIN, IndexType("gin"))
	assert.Equal(t, core.IndexTypeGiST, IndexType("gist"))
	assert.Equal(t, core.IndexTypeBitmap, IndexType("bitmap"))
	assert.Equal(t, core.IndexTypeBTree, IndexType("brin"))
}
