// Package wire is the external transport collaborator spec.md §1 excludes
// from the core: it encodes/decodes the four engines' logical exported
// model shapes to MessagePack, the wire format the teacher's IPC surface
// uses throughout (short struct tags, compact binary frames).
//
// The string engines (StringFuzzy, StringPredict) have concrete, non-generic
// Model types and marshal directly. The token engines are generic over any
// core.Token; MessagePack via reflection works fine on a concrete
// instantiation, so this package wires the common case of
// core.StringToken. Callers with a custom token type marshal their own
// instantiated Model[T] the same way — that instantiation is a concrete Go
// type at compile time, so nothing here forces StringToken specifically.
package wire

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ngramkit/ngramkit/pkg/core"
	"github.com/ngramkit/ngramkit/pkg/stringfuzzy"
	"github.com/ngramkit/ngramkit/pkg/stringpredict"
	"github.com/ngramkit/ngramkit/pkg/tokenfuzzy"
	"github.com/ngramkit/ngramkit/pkg/tokenpredict"
)

// EncodeStringFuzzy marshals a StringFuzzy model to MessagePack.
func EncodeStringFuzzy(m stringfuzzy.Model) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeStringFuzzy unmarshals MessagePack bytes into a StringFuzzy model.
func DecodeStringFuzzy(data []byte) (stringfuzzy.Model, error) {
	var m stringfuzzy.Model
	err := msgpack.Unmarshal(data, &m)
	return m, err
}

// EncodeStringPredict marshals a StringPredict model to MessagePack.
func EncodeStringPredict(m stringpredict.Model) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeStringPredict unmarshals MessagePack bytes into a StringPredict model.
func DecodeStringPredict(data []byte) (stringpredict.Model, error) {
	var m stringpredict.Model
	err := msgpack.Unmarshal(data, &m)
	return m, err
}

// EncodeTokenFuzzy marshals a TokenFuzzy[core.StringToken] model to
// MessagePack — the common case of string-shaped tokens (lexer token
// names, identifiers, and similar).
func EncodeTokenFuzzy(m tokenfuzzy.Model[core.StringToken]) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeTokenFuzzy unmarshals MessagePack bytes into a
// TokenFuzzy[core.StringToken] model.
func DecodeTokenFuzzy(data []byte) (tokenfuzzy.Model[core.StringToken], error) {
	var m tokenfuzzy.Model[core.StringToken]
	err := msgpack.Unmarshal(data, &m)
	return m, err
}

// EncodeTokenPredict marshals a TokenPredict[core.StringToken] model to
// MessagePack.
func EncodeTokenPredict(m tokenpredict.Model[core.StringToken]) ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeTokenPredict unmarshals MessagePack bytes into a
// TokenPredict[core.StringToken] model.
func DecodeTokenPredict(data []byte) (tokenpredict.Model[core.StringToken], error) {
	var m tokenpredict.Model[core.StringToken]
	err := msgpack.Unmarshal(data, &m)
	return m, err
}
