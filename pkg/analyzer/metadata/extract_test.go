package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/tangle/internal/testutil"
	"github.com/panbanda/tangle/pkg/models"
	"github.com/panbanda/tangle/pkg/source"
)

func exportNamed(exports []models.ExportRecord, name string) (models.ExportRecord, bool) {
	for _, e := range exports {
		if e.Name == name {
			return e, true
		}
	}
	return models.ExportRecord{}, false
}

func importNamed(imports []models.ImportRecord, name string) (models.ImportRecord, bool) {
	for _, i := range imports {
		if i.Name == name {
			return i, true
		}
	}
	return models.ImportRecord{}, false
}

func ownerNamed(infos []models.UsageInfo, owner string) (models.UsageInfo, bool) {
	for _, info := range infos {
		if info.OwnerName == owner {
			return info, true
		}
	}
	return models.UsageInfo{}, false
}

func memberNamed(info models.UsageInfo, name string) (models.Member, bool) {
	for _, m := range info.Members {
		if m.Name == name {
			return m, true
		}
	}
	return models.Member{}, false
}

func TestExtract_ExportLine(t *testing.T) {
	u := testutil.ParseUnit(t, "src/a.ts", "// header\n\nexport function foo() {}\n")

	exports := Exports(u)
	require.Len(t, exports, 1)
	assert.Equal(t, "foo", exports[0].Name)
	assert.Equal(t, 3, exports[0].Line)
	assert.Equal(t, models.ExportValue, exports[0].Kind)
}

func TestExtract_ExportKinds(t *testing.T) {
	u := testutil.ParseUnit(t, "src/kinds.ts", `export interface Props { id: string }
export type Id = string;
export const a = 1, b = 2;
export class Service {}
export enum Color { Red }
export default function App() {}
interface Local {}
export { Local };
`)

	tests := []struct {
		name      string
		kind      models.ExportKind
		isDefault bool
	}{
		{"Props", models.ExportInterface, false},
		{"Id", models.ExportType, false},
		{"a", models.ExportValue, false},
		{"b", models.ExportValue, false},
		{"Service", models.ExportValue, false},
		{"Color", models.ExportValue, false},
		{"App", models.ExportValue, true},
		{"Local", models.ExportInterface, false},
	}

	exports := Exports(u)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := exportNamed(exports, tt.name)
			require.True(t, ok, "export %s not found in %+v", tt.name, exports)
			assert.Equal(t, tt.kind, e.Kind)
			assert.Equal(t, tt.isDefault, e.IsDefault)
		})
	}
}

func TestExtract_AnonymousDefaultExport(t *testing.T) {
	u := testutil.ParseUnit(t, "src/d.js", "export default () => 1;\n")

	exports := Exports(u)
	require.Len(t, exports, 1)
	assert.Equal(t, "default", exports[0].Name)
	assert.True(t, exports[0].IsDefault)
}

func TestExtract_Imports(t *testing.T) {
	u := testutil.ParseUnit(t, "src/app.ts", `import React, { useState as useS, type FC } from 'react';
import * as path from 'path';
import './styles.css';
import type { Model } from './types';
`)

	imports := Imports(u)
	require.Len(t, imports, 6)

	react, ok := importNamed(imports, "React")
	require.True(t, ok)
	assert.Equal(t, "default", react.ImportedName)
	assert.Equal(t, "react", react.FromSpecifier)
	assert.Equal(t, 1, react.Line)

	useS, ok := importNamed(imports, "useS")
	require.True(t, ok)
	assert.Equal(t, "useState", useS.ImportedName)
	assert.False(t, useS.IsTypeOnly)

	fc, ok := importNamed(imports, "FC")
	require.True(t, ok)
	assert.True(t, fc.IsTypeOnly)

	ns, ok := importNamed(imports, "path")
	require.True(t, ok)
	assert.Equal(t, "*", ns.ImportedName)
	assert.Equal(t, 2, ns.Line)

	model, ok := importNamed(imports, "Model")
	require.True(t, ok)
	assert.True(t, model.IsTypeOnly)
	assert.Equal(t, "./types", model.FromSpecifier)

	var sideEffect *models.ImportRecord
	for i := range imports {
		if imports[i].IsSideEffect {
			sideEffect = &imports[i]
		}
	}
	require.NotNil(t, sideEffect)
	assert.Equal(t, "./styles.css", sideEffect.FromSpecifier)
	assert.False(t, sideEffect.IsBinding())
}

func TestExtract_CommonJSAndReExports(t *testing.T) {
	u := testutil.ParseUnit(t, "src/index.js", `const fs = require('fs');
const { join, resolve: res } = require('path');
require('./polyfill');
export * from './all';
export { x as y } from './mod';
async function load() { return import('./lazy'); }
module.exports = { load };
`)

	imports := Imports(u)

	fs, ok := importNamed(imports, "fs")
	require.True(t, ok)
	assert.True(t, fs.IsRequire)
	assert.Equal(t, "fs", fs.FromSpecifier)

	res, ok := importNamed(imports, "res")
	require.True(t, ok)
	assert.Equal(t, "resolve", res.ImportedName)
	assert.Equal(t, "path", res.FromSpecifier)

	_, ok = importNamed(imports, "join")
	assert.True(t, ok)

	specs := make(map[string]models.ImportRecord)
	for _, i := range imports {
		specs[i.FromSpecifier] = i
	}
	assert.True(t, specs["./polyfill"].IsRequire)
	assert.True(t, specs["./polyfill"].IsSideEffect)
	assert.True(t, specs["./all"].IsReExport)
	assert.True(t, specs["./mod"].IsReExport)
	assert.Equal(t, "x", specs["./mod"].ImportedName)
	assert.True(t, specs["./lazy"].IsDynamic)

	exports := Exports(u)
	_, ok = exportNamed(exports, "y")
	assert.True(t, ok, "re-exported alias should be an export")
	_, ok = exportNamed(exports, "load")
	assert.True(t, ok, "module.exports property should be an export")

	// The require binding is an import, not a local variable.
	for _, v := range LocalVariables(u) {
		assert.NotEqual(t, "fs", v.Name)
	}
}

func TestExtract_Locals(t *testing.T) {
	u := testutil.ParseUnit(t, "src/locals.ts", `function helper() {}
const used = 1;
let unused = 2;
const arrow = () => used;
export { helper as publicHelper };
`)

	fns := LocalFunctions(u)
	require.Len(t, fns, 1)
	assert.Equal(t, "arrow", fns[0].Name)
	assert.Equal(t, 4, fns[0].Line)

	vars := LocalVariables(u)
	require.Len(t, vars, 2)
	assert.Equal(t, "used", vars[0].Name)
	assert.Equal(t, "unused", vars[1].Name)
	assert.Equal(t, 3, vars[1].Line)

	e, ok := exportNamed(Exports(u), "publicHelper")
	require.True(t, ok)
	assert.Equal(t, models.ExportValue, e.Kind)
}

func TestExtract_UsedIdentifiersSkipDeclarations(t *testing.T) {
	u := testutil.ParseUnit(t, "src/use.ts", `import { bar } from './bar';
const a = b;
function f(x: Model) { return x + bar; }
`)

	used := UsedIdentifiers(u)
	for _, name := range []string{"b", "x", "bar", "Model"} {
		assert.True(t, used.Has(name), "%s should be used", name)
	}
	for _, name := range []string{"a", "f"} {
		assert.False(t, used.Has(name), "%s is only declared", name)
	}
}

func TestExtract_ComponentProps(t *testing.T) {
	u := testutil.ParseUnit(t, "src/Button.tsx", `export function Button({ label, onClick }: Props) {
  return <button>{label}</button>;
}

function Card(props) {
  return <div>{props.title}</div>;
}
`)

	props := ComponentProps(u)

	button, ok := ownerNamed(props, "Button")
	require.True(t, ok)
	assert.Equal(t, 1, button.Line)
	label, ok := memberNamed(button, "label")
	require.True(t, ok)
	assert.True(t, label.IsDeclaredInSignature)
	assert.True(t, label.IsReadInBody)
	onClick, ok := memberNamed(button, "onClick")
	require.True(t, ok)
	assert.True(t, onClick.IsDeclaredInSignature)
	assert.False(t, onClick.IsReadInBody)

	card, ok := ownerNamed(props, "Card")
	require.True(t, ok)
	title, ok := memberNamed(card, "title")
	require.True(t, ok)
	assert.False(t, title.IsDeclaredInSignature)
	assert.True(t, title.IsReadInBody)

	// Components report props, not arguments.
	_, ok = ownerNamed(FunctionArguments(u), "Button")
	assert.False(t, ok)
}

func TestExtract_FunctionArguments(t *testing.T) {
	u := testutil.ParseUnit(t, "src/args.ts", `function add(a: number, b: number, _c: number) {
  return a;
}
const handler = (evt) => 1;
class Svc {
  constructor(private repo: Repo) {}
  run(x) { return 1; }
}
`)

	args := FunctionArguments(u)

	add, ok := ownerNamed(args, "add")
	require.True(t, ok)
	require.Len(t, add.Members, 3)
	assert.True(t, add.Members[0].IsReadInBody)
	assert.False(t, add.Members[1].IsReadInBody)
	assert.Equal(t, "_c", add.Members[2].Name)

	handler, ok := ownerNamed(args, "handler")
	require.True(t, ok)
	evt, ok := memberNamed(handler, "evt")
	require.True(t, ok)
	assert.False(t, evt.IsReadInBody)

	run, ok := ownerNamed(args, "Svc.run")
	require.True(t, ok)
	assert.Equal(t, 7, run.Line)

	_, ok = ownerNamed(args, "Svc.constructor")
	assert.False(t, ok, "parameter properties are fields, not arguments")
}

func TestExtract_ClosureReadCountsForOuterArgument(t *testing.T) {
	u := testutil.ParseUnit(t, "src/closure.js", `function outer(value) {
  return () => value;
}
`)

	outer, ok := ownerNamed(FunctionArguments(u), "outer")
	require.True(t, ok)
	require.Len(t, outer.Members, 1)
	assert.True(t, outer.Members[0].IsReadInBody)
}

func TestExtract_UnparsedUnit(t *testing.T) {
	u := source.NewUnit("notes.txt", []byte("export function foo() {}"), nil)

	m := Extract(u)
	assert.NotNil(t, m.Exports)
	assert.NotNil(t, m.Imports)
	assert.NotNil(t, m.LocalFunctions)
	assert.NotNil(t, m.LocalVariables)
	assert.NotNil(t, m.UsedIdentifiers)
	assert.NotNil(t, m.ComponentProps)
	assert.NotNil(t, m.FunctionArguments)
	assert.Empty(t, m.Exports)
	assert.Empty(t, m.UsedIdentifiers)
}

func TestExtract_Idempotent(t *testing.T) {
	u := testutil.ParseUnit(t, "src/mix.tsx", `import { a, b } from './ab';
export const c = a;
export function D({ x }) { return x; }
`)

	first := Extract(u)
	second := Extract(u)
	assert.Equal(t, first, second)
}
