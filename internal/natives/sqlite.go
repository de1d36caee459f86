package natives

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/yscript-lang/yscript/internal/vm"
)

// handles maps a host Instance's identity to the *sql.DB it wraps. The
// Instance's Fields table carries only the display-facing "path"; the live
// Go resource lives here, never inside a Value, per spec.md GLOSSARY "Host
// Instance".
var (
	handlesMu sync.Mutex
	handles   = map[*vm.ObjInstance]*sql.DB{}
)

// registerDB wires modernc.org/sqlite, the teacher's embedded-database
// dependency, via database/sql as three natives: open a handle, execute a
// statement, and query rows back as a List-of-Map Value (SPEC_FULL.md §2).
func registerDB(v *vm.VM) {
	dbClass := v.NewHostClass("Database")
	mapClass := v.NewHostClass("Row")
	listClass := v.NewHostClass("Rows")

	v.DefineNative("dbOpen", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 1 || !args[0].IsObjType(vm.ObjTypeString) {
			return vm.NilValue(), typeError("dbOpen", 1, "string")
		}
		path := args[0].AsObject().String()
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("dbOpen(): %v", err)
		}
		inst := vmRef.NewHostInstance(dbClass)
		inst.Fields.Set(vmRef.NewHostString("path"), vm.ObjValue(vmRef.NewHostString(path)))

		handlesMu.Lock()
		handles[inst] = db
		handlesMu.Unlock()
		return vm.ObjValue(inst), nil
	})

	v.DefineNative("dbExec", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 2 {
			return vm.NilValue(), arityError("dbExec", 2, len(args))
		}
		db, err := lookupHandle(args[0])
		if err != nil {
			return vm.NilValue(), err
		}
		if !args[1].IsObjType(vm.ObjTypeString) {
			return vm.NilValue(), typeError("dbExec", 2, "string")
		}
		result, err := db.Exec(args[1].AsObject().String())
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("dbExec(): %v", err)
		}
		rows, _ := result.RowsAffected()
		return vm.NumberValue(float64(rows)), nil
	})

	v.DefineNative("dbQuery", func(vmRef *vm.VM, args []vm.Value) (vm.Value, error) {
		if len(args) != 2 {
			return vm.NilValue(), arityError("dbQuery", 2, len(args))
		}
		db, err := lookupHandle(args[0])
		if err != nil {
			return vm.NilValue(), err
		}
		if !args[1].IsObjType(vm.ObjTypeString) {
			return vm.NilValue(), typeError("dbQuery", 2, "string")
		}
		rows, err := db.Query(args[1].AsObject().String())
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("dbQuery(): %v", err)
		}
		defer rows.Close()

		cols, err := rows.Columns()
		if err != nil {
			return vm.NilValue(), vm.RuntimeError("dbQuery(): %v", err)
		}

		list := vmRef.NewHostInstance(listClass)
		count := 0
		for rows.Next() {
			scanTargets := make([]any, len(cols))
			scanPtrs := make([]any, len(cols))
			for i := range scanTargets {
				scanPtrs[i] = &scanTargets[i]
			}
			if err := rows.Scan(scanPtrs...); err != nil {
				return vm.NilValue(), vm.RuntimeError("dbQuery(): %v", err)
			}
			row := vmRef.NewHostInstance(mapClass)
			for i, col := range cols {
				row.Fields.Set(vmRef.NewHostString(col), sqlValueToValue(vmRef, scanTargets[i]))
			}
			list.Fields.Set(vmRef.NewHostString(fmt.Sprintf("%d", count)), vm.ObjValue(row))
			count++
		}
		list.Fields.Set(vmRef.NewHostString("length"), vm.NumberValue(float64(count)))
		return vm.ObjValue(list), nil
	})
}

func lookupHandle(v vm.Value) (*sql.DB, error) {
	if !v.IsObjType(vm.ObjTypeInstance) {
		return nil, typeError("db", 1, "Database instance")
	}
	inst := v.AsObject().(*vm.ObjInstance)
	handlesMu.Lock()
	db, ok := handles[inst]
	handlesMu.Unlock()
	if !ok {
		return nil, vm.RuntimeError("not an open database handle.")
	}
	return db, nil
}

func sqlValueToValue(vmRef *vm.VM, x any) vm.Value {
	switch t := x.(type) {
	case nil:
		return vm.NilValue()
	case int64:
		return vm.NumberValue(float64(t))
	case float64:
		return vm.NumberValue(t)
	case []byte:
		return vm.ObjValue(vmRef.NewHostString(string(t)))
	case string:
		return vm.ObjValue(vmRef.NewHostString(t))
	case bool:
		return vm.BoolValue(t)
	default:
		return vm.ObjValue(vmRef.NewHostString(fmt.Sprintf("%v", t)))
	}
}
