// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package ast

import (
	"encoding/json"
	"fmt"
)

// MarshalChunk serializes c the way the out-of-scope unparser consumes
// it: a "kind"-tagged tree, dispatched by hand the same way the pack's
// UnmarshalJSON implementations dispatch on a discriminator field —
// there is no single struct-of-optional-variants shape that fits a
// recursive tree, so each node kind gets its own case.
func MarshalChunk(c *Chunk) ([]byte, error) {
	return json.Marshal(encode(c))
}

// UnmarshalChunk parses the JSON produced by the out-of-scope parser
// into a Chunk.
func UnmarshalChunk(data []byte) (*Chunk, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("ast: decoding chunk: %w", err)
	}
	n, err := decode(raw)
	if err != nil {
		return nil, err
	}
	chunk, ok := n.(*Chunk)
	if !ok {
		return nil, fmt.Errorf("ast: top-level JSON value is not a Chunk (got kind %T)", n)
	}
	return chunk, nil
}

func encode(n Node) interface{} {
	if n == nil {
		return nil
	}
	switch t := n.(type) {
	case *Chunk:
		return obj(t, "body", encode(t.Body))
	case *Block:
		return obj(t, "stmts", encodeList(t.Stmts))
	case *Function:
		return obj(t, "name", t.Name, "params", t.Params, "body", encode(t.Body))
	case *LocalFunction:
		return obj(t, "name", t.Name, "params", t.Params, "body", encode(t.Body))
	case *Assign:
		return obj(t, "targets", encodeList(t.Targets), "values", encodeList(t.Values))
	case *LocalAssign:
		return obj(t, "names", t.Names, "values", encodeList(t.Values))
	case *Return:
		return obj(t, "values", encodeList(t.Values))
	case Break:
		return obj(t)
	case SemiColon:
		return obj(t)
	case *Do:
		return obj(t, "body", encode(t.Body))
	case *If:
		clauses := make([]interface{}, len(t.Clauses))
		for i, c := range t.Clauses {
			clauses[i] = map[string]interface{}{"cond": encode(c.Cond), "body": encode(c.Body)}
		}
		return obj(t, "clauses", clauses, "else", encode(t.Else))
	case *While:
		return obj(t, "cond", encode(t.Cond), "body", encode(t.Body))
	case *Repeat:
		return obj(t, "body", encode(t.Body), "cond", encode(t.Cond))
	case *NumericFor:
		return obj(t, "var", t.Var, "start", encode(t.Start), "stop", encode(t.Stop), "step", encode(t.Step), "body", encode(t.Body))
	case *GenericFor:
		return obj(t, "names", t.Names, "exprs", encodeList(t.Exprs), "body", encode(t.Body))
	case *Label:
		return obj(t, "name", t.Name)
	case *Goto:
		return obj(t, "name", t.Name)
	case *Call:
		return obj(t, "func", encode(t.Func), "args", encodeList(t.Args))
	case *Invoke:
		return obj(t, "object", encode(t.Object), "method", t.Method, "args", encodeList(t.Args))
	case *Name:
		return obj(t, "value", t.Value)
	case *Index:
		return obj(t, "object", encode(t.Object), "field", t.Field)
	case String:
		return obj(t, "value", t.Value)
	case Number:
		return obj(t, "value", t.Value)
	case Bool:
		return obj(t, "value", t.Value)
	default:
		panic(fmt.Sprintf("ast: encode: unhandled node kind %T", n))
	}
}

func encodeList(in []Node) []interface{} {
	out := make([]interface{}, len(in))
	for i, n := range in {
		out[i] = encode(n)
	}
	return out
}

func obj(n Node, kv ...interface{}) map[string]interface{} {
	m := map[string]interface{}{"kind": n.Kind()}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}

func decode(raw interface{}) (Node, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("ast: decode: expected an object, got %T", raw)
	}
	kind, _ := m["kind"].(string)
	switch kind {
	case "Chunk":
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &Chunk{Body: body}, nil
	case "Block":
		return decodeBlockObj(m)
	case "Function":
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &Function{Name: str(m["name"]), Params: strList(m["params"]), Body: body}, nil
	case "LocalFunction":
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &LocalFunction{Name: str(m["name"]), Params: strList(m["params"]), Body: body}, nil
	case "Assign":
		targets, err := decodeList(m["targets"])
		if err != nil {
			return nil, err
		}
		values, err := decodeList(m["values"])
		if err != nil {
			return nil, err
		}
		return &Assign{Targets: targets, Values: values}, nil
	case "LocalAssign":
		values, err := decodeList(m["values"])
		if err != nil {
			return nil, err
		}
		return &LocalAssign{Names: strList(m["names"]), Values: values}, nil
	case "Return":
		values, err := decodeList(m["values"])
		if err != nil {
			return nil, err
		}
		return &Return{Values: values}, nil
	case "Break":
		return Break{}, nil
	case "SemiColon":
		return SemiColon{}, nil
	case "Do":
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &Do{Body: body}, nil
	case "If":
		rawClauses, _ := m["clauses"].([]interface{})
		clauses := make([]IfClause, len(rawClauses))
		for i, rc := range rawClauses {
			cm, ok := rc.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("ast: decode: malformed if clause")
			}
			cond, err := decode(cm["cond"])
			if err != nil {
				return nil, err
			}
			body, err := decodeBlock(cm["body"])
			if err != nil {
				return nil, err
			}
			clauses[i] = IfClause{Cond: cond, Body: body}
		}
		var elseBlock *Block
		if m["else"] != nil {
			b, err := decodeBlock(m["else"])
			if err != nil {
				return nil, err
			}
			elseBlock = b
		}
		return &If{Clauses: clauses, Else: elseBlock}, nil
	case "While":
		cond, err := decode(m["cond"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &While{Cond: cond, Body: body}, nil
	case "Repeat":
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		cond, err := decode(m["cond"])
		if err != nil {
			return nil, err
		}
		return &Repeat{Body: body, Cond: cond}, nil
	case "Fornum":
		start, err := decode(m["start"])
		if err != nil {
			return nil, err
		}
		stop, err := decode(m["stop"])
		if err != nil {
			return nil, err
		}
		step, err := decode(m["step"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &NumericFor{Var: str(m["var"]), Start: start, Stop: stop, Step: step, Body: body}, nil
	case "Forin":
		exprs, err := decodeList(m["exprs"])
		if err != nil {
			return nil, err
		}
		body, err := decodeBlock(m["body"])
		if err != nil {
			return nil, err
		}
		return &GenericFor{Names: strList(m["names"]), Exprs: exprs, Body: body}, nil
	case "Label":
		return &Label{Name: str(m["name"])}, nil
	case "Goto":
		return &Goto{Name: str(m["name"])}, nil
	case "Call":
		fn, err := decode(m["func"])
		if err != nil {
			return nil, err
		}
		args, err := decodeList(m["args"])
		if err != nil {
			return nil, err
		}
		return &Call{Func: fn, Args: args}, nil
	case "Invoke":
		object, err := decode(m["object"])
		if err != nil {
			return nil, err
		}
		args, err := decodeList(m["args"])
		if err != nil {
			return nil, err
		}
		return &Invoke{Object: object, Method: str(m["method"]), Args: args}, nil
	case "Name":
		return &Name{Value: str(m["value"])}, nil
	case "Index":
		object, err := decode(m["object"])
		if err != nil {
			return nil, err
		}
		return &Index{Object: object, Field: str(m["field"])}, nil
	case "String":
		return String{Value: str(m["value"])}, nil
	case "Number":
		f, _ := m["value"].(float64)
		return Number{Value: f}, nil
	case "Bool":
		b, _ := m["value"].(bool)
		return Bool{Value: b}, nil
	default:
		return nil, fmt.Errorf("ast: decode: unrecognized node kind %q", kind)
	}
}

func decodeBlockObj(m map[string]interface{}) (Node, error) {
	stmts, err := decodeList(m["stmts"])
	if err != nil {
		return nil, err
	}
	return &Block{Stmts: stmts}, nil
}

func decodeBlock(raw interface{}) (*Block, error) {
	if raw == nil {
		return nil, nil
	}
	n, err := decode(raw)
	if err != nil {
		return nil, err
	}
	b, ok := n.(*Block)
	if !ok {
		return nil, fmt.Errorf("ast: decode: expected a Block, got %T", n)
	}
	return b, nil
}

func decodeList(raw interface{}) ([]Node, error) {
	if raw == nil {
		return nil, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("ast: decode: expected an array, got %T", raw)
	}
	out := make([]Node, len(items))
	for i, item := range items {
		n, err := decode(item)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func strList(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = str(item)
	}
	return out
}
