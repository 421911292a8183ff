// Package dbveneer demonstrates the veneer protocol over a native
// Go resource that is not one of the runtime's core container types: a
// database/sql handle, reworked from a connection-pool manager into a
// scripting-visible `database` object with query/execute/close methods,
// wiring every SQL driver available.
package dbveneer

import (
	"database/sql"
	"fmt"

	_ "github.com/denisenkom/go-mssqldb"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"morpho/internal/interp"
	"morpho/internal/object"
	"morpho/internal/value"
)

// TypeDatabase is the native TypeID a bound database handle carries.
var TypeDatabase = object.RegisterNativeType("database")

// DatabaseObject wraps an open *sql.DB as a heap object the runtime can
// hold, pass around, and garbage collect like any other value. Unlike
// the core containers it carries no Markable children: the *sql.DB is an
// opaque host resource, not a graph of scripting values.
type DatabaseObject struct {
	object.Object
	Driver string
	DB     *sql.DB
}

func NewDatabaseObject(driver string, db *sql.DB) *DatabaseObject {
	return &DatabaseObject{Object: object.NewHeader(TypeDatabase), Driver: driver, DB: db}
}

func (d *DatabaseObject) ObjString() string { return fmt.Sprintf("<database %s>", d.Driver) }

// driverFor maps the scripting-level name to the registered database/sql
// driver name.
func driverFor(dbType string) (string, error) {
	switch dbType {
	case "sqlite", "sqlite3":
		return "sqlite3", nil
	case "sqlite-pure":
		return "sqlite", nil // modernc.org/sqlite, registered driver name "sqlite"
	case "postgres", "postgresql":
		return "postgres", nil
	case "mysql":
		return "mysql", nil
	case "sqlserver", "mssql":
		return "sqlserver", nil
	default:
		return "", fmt.Errorf("unsupported database type: %s", dbType)
	}
}

// RegisterDefaults installs the `Database` veneer class: query/execute/
// close/print. Handles are created by the package function Open, not by
// a class method. Call once during program/VM setup.
func RegisterDefaults() {
	cls := object.NewClass("Database", nil)
	cls.Methods.Set(value.Object(object.NewString("query")), value.Object(object.NewBuiltinFunction(
		"query", 1, -1, queryMethod)))
	cls.Methods.Set(value.Object(object.NewString("execute")), value.Object(object.NewBuiltinFunction(
		"execute", 1, -1, executeMethod)))
	cls.Methods.Set(value.Object(object.NewString("close")), value.Object(object.NewBuiltinFunction(
		"close", 0, 0, closeMethod)))
	cls.Methods.Set(value.Object(object.NewString("print")), value.Object(object.NewBuiltinFunction(
		"print", 0, 0, func(ctx object.NativeContext, args []value.Value) (value.Value, error) {
			return value.Object(object.NewString(args[0].String())), nil
		})))
	interp.RegisterVeneer(TypeDatabase, cls)
}

// Open connects to a database and binds the handle to vm's heap, returning it as a scripting value.
func Open(vm object.NativeContext, dbType, dsn string) (value.Value, error) {
	driverName, err := driverFor(dbType)
	if err != nil {
		return value.Nil, vm.Raise("InvldArgs", "%s", err.Error())
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return value.Nil, vm.Raise("Intrnl", "failed to open %s: %s", dbType, err.Error())
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return value.Nil, vm.Raise("Intrnl", "failed to connect to %s: %s", dbType, err.Error())
	}
	obj := NewDatabaseObject(driverName, db)
	vm.Bind(obj)
	return value.Object(obj), nil
}

func queryMethod(ctx object.NativeContext, args []value.Value) (value.Value, error) {
	d, ok := args[0].AsObject().(*DatabaseObject)
	if !ok || len(args) < 2 {
		return value.Nil, ctx.Raise("InvldArgs", "query expects a SQL string")
	}
	query := args[1].String()
	params := make([]interface{}, 0, len(args)-2)
	for _, a := range args[2:] {
		params = append(params, sqlParam(a))
	}
	rows, err := d.DB.Query(query, params...)
	if err != nil {
		return value.Nil, ctx.Raise("Intrnl", "query failed: %s", err.Error())
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return value.Nil, ctx.Raise("Intrnl", "query failed: %s", err.Error())
	}
	results := make([]value.Value, 0)
	for rows.Next() {
		raw := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return value.Nil, ctx.Raise("Intrnl", "row scan failed: %s", err.Error())
		}
		row := object.NewDictionary()
		for i, col := range cols {
			row.Table.Set(value.Object(object.NewString(col)), goToValue(ctx, raw[i]))
		}
		ctx.Bind(row)
		results = append(results, value.Object(row))
	}
	l := object.NewListFrom(results)
	ctx.Bind(l)
	return value.Object(l), nil
}

func executeMethod(ctx object.NativeContext, args []value.Value) (value.Value, error) {
	d, ok := args[0].AsObject().(*DatabaseObject)
	if !ok || len(args) < 2 {
		return value.Nil, ctx.Raise("InvldArgs", "execute expects a SQL string")
	}
	stmt := args[1].String()
	params := make([]interface{}, 0, len(args)-2)
	for _, a := range args[2:] {
		params = append(params, sqlParam(a))
	}
	res, err := d.DB.Exec(stmt, params...)
	if err != nil {
		return value.Nil, ctx.Raise("Intrnl", "execute failed: %s", err.Error())
	}
	n, _ := res.RowsAffected()
	return value.Int(int32(n)), nil
}

func closeMethod(ctx object.NativeContext, args []value.Value) (value.Value, error) {
	d, ok := args[0].AsObject().(*DatabaseObject)
	if !ok {
		return value.Nil, ctx.Raise("NotAnObj", "close called on a non-database value")
	}
	if err := d.DB.Close(); err != nil {
		return value.Nil, ctx.Raise("Intrnl", "close failed: %s", err.Error())
	}
	return value.Nil, nil
}

func sqlParam(v value.Value) interface{} {
	switch {
	case v.IsInt():
		return v.AsInt()
	case v.IsFloat():
		return v.AsFloat()
	case v.IsBool():
		return v.AsBool()
	case v.IsNil():
		return nil
	default:
		return v.String()
	}
}

func goToValue(ctx object.NativeContext, raw interface{}) value.Value {
	switch x := raw.(type) {
	case nil:
		return value.Nil
	case int64:
		return value.Int(int32(x))
	case float64:
		return value.Float(x)
	case bool:
		return value.Bool(x)
	case []byte:
		s := object.NewString(string(x))
		ctx.Bind(s)
		return value.Object(s)
	case string:
		s := object.NewString(x)
		ctx.Bind(s)
		return value.Object(s)
	default:
		s := object.NewString(fmt.Sprintf("%v", x))
		ctx.Bind(s)
		return value.Object(s)
	}
}
