// Package wasmtest assembles tiny guest modules for host tests.
package wasmtest

import (
	"github.com/tetratelabs/wazero/api"
)

const (
	sectionType     = 1
	sectionImport   = 2
	sectionFunction = 3
	sectionMemory   = 5
	sectionExport   = 7
	sectionCode     = 10

	externFunc   = 0x00
	externMemory = 0x02

	opLocalGet = 0x20
	opCall     = 0x10
	opEnd      = 0x0b
)

// Forwarder returns a module that imports module#name with the given
// signature and re-exports it as "call". The module also exports one page of
// memory as "memory" so host functions can write results into it.
func Forwarder(module, name string, params, results []api.ValueType) []byte {
	sig := []byte{0x60}
	sig = appendVec(sig, params)
	sig = appendVec(sig, results)

	imp := appendName(nil, module)
	imp = appendName(imp, name)
	imp = append(imp, externFunc, 0)

	exp := uleb(nil, 2)
	exp = appendName(exp, "call")
	exp = append(exp, externFunc, 1)
	exp = appendName(exp, "memory")
	exp = append(exp, externMemory, 0)

	body := uleb(nil, 0) // no locals
	for i := range params {
		body = append(body, opLocalGet)
		body = uleb(body, uint64(i))
	}
	body = append(body, opCall, 0, opEnd)
	code := uleb(nil, 1)
	code = uleb(code, uint64(len(body)))
	code = append(code, body...)

	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}
	out = section(out, sectionType, append([]byte{1}, sig...))
	out = section(out, sectionImport, append([]byte{1}, imp...))
	out = section(out, sectionFunction, []byte{1, 0})
	out = section(out, sectionMemory, []byte{1, 0x00, 1})
	out = section(out, sectionExport, exp)
	out = section(out, sectionCode, code)
	return out
}

func section(out []byte, id byte, content []byte) []byte {
	out = append(out, id)
	out = uleb(out, uint64(len(content)))
	return append(out, content...)
}

func appendVec(out []byte, types []api.ValueType) []byte {
	out = uleb(out, uint64(len(types)))
	return append(out, types...)
}

func appendName(out []byte, s string) []byte {
	out = uleb(out, uint64(len(s)))
	return append(out, s...)
}

func uleb(out []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			out = append(out, b|0x80)
			continue
		}
		return append(out, b)
	}
}
