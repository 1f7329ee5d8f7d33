package wasmhost

import "go.bytecodealliance.org/wit"

// Guest-facing module and export names.
const (
	TypesModule           = "wasi:http/types"
	StreamsModule         = "wasi:io/streams"
	OutgoingHandlerModule = "wasi:http/outgoing-handler"
	HandleExport          = "wasi:http/incoming-handler#handle"
	ReallocExport         = "cabi_realloc"
	MemoryExport          = "memory"
)

func typeDef(kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Kind: kind}
}

func listOf(t wit.Type) *wit.TypeDef {
	return typeDef(&wit.List{Type: t})
}

func optionOf(t wit.Type) *wit.TypeDef {
	return typeDef(&wit.Option{Type: t})
}

func resultOf(ok, err wit.Type) *wit.TypeDef {
	return typeDef(&wit.Result{OK: ok, Err: err})
}

func tupleOf(types ...wit.Type) *wit.TypeDef {
	return typeDef(&wit.Tuple{Types: types})
}

func stringVariant(names ...string) *wit.TypeDef {
	cases := make([]wit.Case, len(names))
	for i, n := range names {
		cases[i] = wit.Case{Name: n, Type: wit.String{}}
	}
	return typeDef(&wit.Variant{Cases: cases})
}

// Handles are plain u32 values in this interface generation.
var (
	handleT = wit.U32{}
	u16T    = wit.U16{}
	u64T    = wit.U64{}
	boolT   = wit.Bool{}
	stringT = wit.String{}

	bytesT      = listOf(wit.U8{})
	stringsT    = listOf(stringT)
	entriesT    = listOf(tupleOf(stringT, stringT))
	streamErrT  = typeDef(&wit.Record{})
	optHandleT  = optionOf(handleT)
	handleOrErr = resultOf(handleT, nil)

	methodT = typeDef(&wit.Variant{Cases: []wit.Case{
		{Name: "get"}, {Name: "head"}, {Name: "post"}, {Name: "put"}, {Name: "delete"},
		{Name: "connect"}, {Name: "options"}, {Name: "trace"}, {Name: "patch"},
		{Name: "other", Type: stringT},
	}})
	schemeT = typeDef(&wit.Variant{Cases: []wit.Case{
		{Name: "HTTP"}, {Name: "HTTPS"}, {Name: "other", Type: stringT},
	}})
	errorT = stringVariant("invalid-url", "timeout-error", "protocol-error", "unexpected-error")

	optU32T          = optionOf(wit.U32{})
	requestOptionsT  = optionOf(typeDef(&wit.Record{Fields: []wit.Field{{Name: "connect-timeout-ms", Type: optU32T}, {Name: "first-byte-timeout-ms", Type: optU32T}, {Name: "between-bytes-timeout-ms", Type: optU32T}}}))
	incomingResultT  = optionOf(resultOf(handleT, errorT))
	readResultT      = resultOf(tupleOf(bytesT, boolT), streamErrT)
	countResultT     = resultOf(u64T, streamErrT)
	countDoneResultT = resultOf(tupleOf(u64T, boolT), streamErrT)
)

func sig(params []wit.Type, results ...wit.Type) Signature {
	return Signature{Params: params, Results: results}
}

func params(types ...wit.Type) []wit.Type {
	return types
}
