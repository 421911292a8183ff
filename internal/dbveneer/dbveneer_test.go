package dbveneer

import (
	"fmt"
	"testing"

	"morpho/internal/object"
	"morpho/internal/value"
)

type fakeCtx struct {
	bound []value.Obj
}

func (c *fakeCtx) Bind(o value.Obj) { c.bound = append(c.bound, o) }
func (c *fakeCtx) Raise(id string, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s", id, fmt.Sprintf(format, args...))
}

func TestDriverForKnownTypes(t *testing.T) {
	tests := []struct {
		dbType string
		want   string
	}{
		{"sqlite", "sqlite3"},
		{"sqlite3", "sqlite3"},
		{"sqlite-pure", "sqlite"},
		{"postgres", "postgres"},
		{"postgresql", "postgres"},
		{"mysql", "mysql"},
		{"sqlserver", "sqlserver"},
		{"mssql", "sqlserver"},
	}
	for _, tc := range tests {
		got, err := driverFor(tc.dbType)
		if err != nil {
			t.Errorf("driverFor(%q) error: %v", tc.dbType, err)
		}
		if got != tc.want {
			t.Errorf("driverFor(%q) = %q, want %q", tc.dbType, got, tc.want)
		}
	}
}

func TestDriverForUnknownType(t *testing.T) {
	if _, err := driverFor("oracle"); err == nil {
		t.Fatal("driverFor with an unregistered database type did not error")
	}
}

func TestSqlParamConversions(t *testing.T) {
	if got := sqlParam(value.Int(7)); got != int32(7) {
		t.Errorf("sqlParam(Int(7)) = %v, want 7", got)
	}
	if got := sqlParam(value.Float(1.5)); got != 1.5 {
		t.Errorf("sqlParam(Float(1.5)) = %v, want 1.5", got)
	}
	if got := sqlParam(value.True); got != true {
		t.Errorf("sqlParam(True) = %v, want true", got)
	}
	if got := sqlParam(value.Nil); got != nil {
		t.Errorf("sqlParam(Nil) = %v, want nil", got)
	}
}

func TestGoToValueConversions(t *testing.T) {
	ctx := &fakeCtx{}
	if v := goToValue(ctx, nil); !v.IsNil() {
		t.Errorf("goToValue(nil) = %v, want nil value", v)
	}
	if v := goToValue(ctx, int64(42)); v.AsInt() != 42 {
		t.Errorf("goToValue(int64(42)) = %v, want 42", v)
	}
	if v := goToValue(ctx, float64(3.25)); v.AsFloat() != 3.25 {
		t.Errorf("goToValue(3.25) = %v, want 3.25", v)
	}
	if v := goToValue(ctx, true); !v.AsBool() {
		t.Errorf("goToValue(true) = %v, want true", v)
	}
	if v := goToValue(ctx, "hi"); v.String() != "hi" {
		t.Errorf("goToValue(\"hi\") = %v, want hi", v)
	}
	if len(ctx.bound) != 1 {
		t.Errorf("goToValue did not Bind the string object it allocated, len(bound) = %d", len(ctx.bound))
	}
}

func TestOpenQueryExecuteCloseAgainstInMemorySQLite(t *testing.T) {
	ctx := &fakeCtx{}
	dbVal, err := Open(ctx, "sqlite-pure", ":memory:")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	if _, err := executeMethod(ctx, []value.Value{dbVal, value.Object(object.NewString("create table t (id integer, name text)"))}); err != nil {
		t.Fatalf("create table failed: %v", err)
	}
	if _, err := executeMethod(ctx, []value.Value{dbVal, value.Object(object.NewString("insert into t values (1, 'a')"))}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	rows, err := queryMethod(ctx, []value.Value{dbVal, value.Object(object.NewString("select id, name from t"))})
	if err != nil {
		t.Fatalf("query error: %v", err)
	}
	list := rows.AsObject()
	if list == nil {
		t.Fatal("query returned a nil list")
	}

	if _, err := closeMethod(ctx, []value.Value{dbVal}); err != nil {
		t.Fatalf("close error: %v", err)
	}
}
