package wasmhost

import (
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
)

// Canonical ABI flattening limits
const (
	MaxFlatParams  = 16
	MaxFlatResults = 1
)

// FlattenTypes flattens WIT types to core wasm types
func FlattenTypes(types []wit.Type) []api.ValueType {
	var result []api.ValueType
	for _, t := range types {
		result = append(result, FlattenType(t)...)
	}
	return result
}

// FlattenType flattens a WIT type to core wasm types
func FlattenType(t wit.Type) []api.ValueType {
	if t == nil {
		return nil
	}

	switch v := t.(type) {
	case wit.Bool, wit.U8, wit.U16, wit.U32, wit.S8, wit.S16, wit.S32, wit.Char:
		return []api.ValueType{api.ValueTypeI32}
	case wit.U64, wit.S64:
		return []api.ValueType{api.ValueTypeI64}
	case wit.F32:
		return []api.ValueType{api.ValueTypeF32}
	case wit.F64:
		return []api.ValueType{api.ValueTypeF64}
	case wit.String:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32} // ptr, len
	case *wit.TypeDef:
		return flattenTypeDef(v)
	default:
		return []api.ValueType{api.ValueTypeI32}
	}
}

func flattenTypeDef(td *wit.TypeDef) []api.ValueType {
	if td == nil || td.Kind == nil {
		return []api.ValueType{api.ValueTypeI32}
	}

	switch kind := td.Kind.(type) {
	case *wit.Record:
		var flat []api.ValueType
		for _, field := range kind.Fields {
			flat = append(flat, FlattenType(field.Type)...)
		}
		return flat
	case *wit.List:
		return []api.ValueType{api.ValueTypeI32, api.ValueTypeI32}
	case *wit.Tuple:
		return FlattenTypes(kind.Types)
	case *wit.Variant:
		var payload []api.ValueType
		for _, c := range kind.Cases {
			payload = join(payload, FlattenType(c.Type))
		}
		return append([]api.ValueType{api.ValueTypeI32}, payload...)
	case *wit.Enum:
		return []api.ValueType{api.ValueTypeI32}
	case *wit.Option:
		return append([]api.ValueType{api.ValueTypeI32}, FlattenType(kind.Type)...)
	case *wit.Result:
		payload := FlattenType(kind.OK)
		payload = join(payload, FlattenType(kind.Err))
		return append([]api.ValueType{api.ValueTypeI32}, payload...)
	case *wit.Own, *wit.Borrow:
		return []api.ValueType{api.ValueTypeI32}
	default:
		return []api.ValueType{api.ValueTypeI32}
	}
}

// join merges a case payload into the shared variant payload
func join(payload, c []api.ValueType) []api.ValueType {
	for i, ft := range c {
		if i < len(payload) {
			payload[i] = joinTypes(payload[i], ft)
		} else {
			payload = append(payload, ft)
		}
	}
	return payload
}

// joinTypes unions two core types for variant payloads
func joinTypes(a, b api.ValueType) api.ValueType {
	if a == b {
		return a
	}
	if (a == api.ValueTypeI32 && b == api.ValueTypeF32) ||
		(a == api.ValueTypeF32 && b == api.ValueTypeI32) {
		return api.ValueTypeI32
	}
	return api.ValueTypeI64
}

// Signature is the WIT signature of a host function.
type Signature struct {
	Params  []wit.Type
	Results []wit.Type
}

// Lower returns the core signature a guest uses to import the function.
// Params past MaxFlatParams are passed by pointer; results past
// MaxFlatResults are written through a trailing return pointer.
func (s Signature) Lower() (params, results []api.ValueType) {
	params = FlattenTypes(s.Params)
	results = FlattenTypes(s.Results)

	if len(params) > MaxFlatParams {
		params = []api.ValueType{api.ValueTypeI32}
	}
	if len(results) > MaxFlatResults {
		params = append(params, api.ValueTypeI32)
		results = nil
	}
	return params, results
}

// RetPtr reports whether results are returned through a pointer.
func (s Signature) RetPtr() bool {
	return len(FlattenTypes(s.Results)) > MaxFlatResults
}
