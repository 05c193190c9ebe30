package mcpserver

// Tool descriptions with interpretation guidance for LLMs.

func describeDeadcode() string {
	return `Finds unused code in a TypeScript/JavaScript project: exports nobody imports, imports that are never read, functions that are never called, variables that are never read, React component props that are never used, and function arguments that are never read.

USE WHEN:
- Cleaning up a module before refactoring it
- Checking what a feature removal left behind
- Reviewing a branch for leftovers (pass ref to analyze a git revision)

INTERPRETING RESULTS:
- unusedExport: no file in the analyzed set imports the name. Public package entry points will show up here; verify before deleting
- unusedImport: safe to remove unless the import has side effects you rely on
- deadFunction / unusedVariable: local declarations with no reads
- unusedProp: destructured component prop that the component body never reads; owner_component names the component
- unusedArgument: parameter never read; owner_function names the function. Arguments starting with _ are skipped by default
- Dynamic imports with computed specifiers and string-based property access are invisible to the analysis

METRICS RETURNED:
- One list per category with file, line, symbol and kind
- total_count and files_analyzed`
}

func describeDependencies() string {
	return `Walks the import graph from a root file and reports everything it depends on, everything that depends on it, and a safe build order.

USE WHEN:
- Estimating the blast radius of changing a file
- Planning the order to migrate or refactor a set of modules
- Finding import cycles
- Listing third-party packages a feature pulls in

INTERPRETING RESULTS:
- dependencies: local files reachable from root, with depth and the file that first imported them
- external_packages: bare specifiers such as react or lodash/get
- type_entities: interfaces, types, classes and enums declared in reachable files; is_directly_used marks those root imports by name
- topological_order: leaves first, root last. Files on a cycle are left out and listed under cycles
- direct_dependents / transitive_dependents: files that import root, directly or through others

METRICS RETURNED:
- Dependency and dependent lists with depth
- Topological order and cycles`
}
