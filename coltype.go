package strictlite

import "fmt"

// ColumnType is the dynamic type the engine currently reports for a column of
// the current row. It is a property of the stored value, not of the schema,
// and can change from row to row within the same column.
type ColumnType int32

const (
	TypeInteger ColumnType = ColumnType(c_SQLITE_INTEGER)
	TypeFloat   ColumnType = ColumnType(c_SQLITE_FLOAT)
	TypeText    ColumnType = ColumnType(c_SQLITE_TEXT)
	TypeBlob    ColumnType = ColumnType(c_SQLITE_BLOB)
	TypeNull    ColumnType = ColumnType(c_SQLITE_NULL)
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeFloat:
		return "FLOAT"
	case TypeText:
		return "TEXT"
	case TypeBlob:
		return "BLOB"
	case TypeNull:
		return "NULL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int32(t))
	}
}

// sized reports whether values of this type have a byte length that must be
// captured at check time.
func (t ColumnType) sized() bool {
	return t == TypeText || t == TypeBlob
}
