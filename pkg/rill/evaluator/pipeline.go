package evaluator

import (
	"fmt"
	"strings"

	"github.com/rill-lang/rill/pkg/rill/ast"
)

// NodeState tracks a pipeline node's lifecycle.
type NodeState int

const (
	NodePending NodeState = iota
	NodeRunning
	NodeDone
	NodeFailed
)

func (s NodeState) String() string {
	switch s {
	case NodeRunning:
		return "running"
	case NodeDone:
		return "done"
	case NodeFailed:
		return "failed"
	default:
		return "pending"
	}
}

// PipelineNode is one named computation in a pipeline. Deps are arena
// indices of the nodes it reads, in first-reference order. Value caches the
// result of the first evaluation; failed results are cached too.
type PipelineNode struct {
	Name  string
	Expr  ast.Expression
	Deps  []int
	State NodeState
	Value Object
}

// Pipeline is a lazily-evaluated dependency graph of named nodes. The graph
// is validated acyclic at construction; evaluation is deterministic and
// memoized per pipeline value.
type Pipeline struct {
	nodes []*PipelineNode
	index map[string]int
	env   *Environment // environment captured where the literal appeared
}

func (p *Pipeline) Type() ObjectType { return PIPELINE_OBJ }
func (p *Pipeline) Inspect() string {
	names := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		names[i] = n.Name
	}
	return fmt.Sprintf("pipeline(%s)", strings.Join(names, ", "))
}

// evalPipelineLiteral builds the graph: nodes in declaration order,
// dependency edges from free identifiers that match node names, then a
// cycle check. Node expressions are not evaluated here.
func evalPipelineLiteral(node *ast.PipelineLiteral, env *Environment) Object {
	p := &Pipeline{
		index: make(map[string]int, len(node.Decls)),
		env:   env,
	}

	for _, decl := range node.Decls {
		if _, dup := p.index[decl.Name]; dup {
			return newErrorWithPos("PIPE-0003", decl.Token, map[string]any{"Name": decl.Name})
		}
		p.index[decl.Name] = len(p.nodes)
		p.nodes = append(p.nodes, &PipelineNode{Name: decl.Name, Expr: decl.Value})
	}

	// Forward references are fine: edges resolve against the full name set.
	for _, n := range p.nodes {
		for _, name := range freeIdentifiers(n.Expr) {
			if dep, ok := p.index[name]; ok {
				n.Deps = append(n.Deps, dep)
			}
		}
	}

	if cycle := p.findCycle(); cycle != nil {
		return newErrorWithPos("PIPE-0001", node.Token, map[string]any{
			"Nodes": strings.Join(cycle, " -> "),
		})
	}

	return p
}

// findCycle runs a coloring DFS over the dependency edges and returns the
// names along the first cycle found, or nil.
func (p *Pipeline) findCycle() []string {
	const (
		white = 0
		grey  = 1
		black = 2
	)
	color := make([]int, len(p.nodes))
	var stack []int
	var cycle []string

	var visit func(i int) bool
	visit = func(i int) bool {
		color[i] = grey
		stack = append(stack, i)
		for _, dep := range p.nodes[i].Deps {
			if color[dep] == grey {
				// Slice the stack from the first occurrence of dep.
				start := 0
				for j, s := range stack {
					if s == dep {
						start = j
						break
					}
				}
				for _, s := range stack[start:] {
					cycle = append(cycle, p.nodes[s].Name)
				}
				cycle = append(cycle, p.nodes[dep].Name)
				return true
			}
			if color[dep] == white && visit(dep) {
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[i] = black
		return false
	}

	for i := range p.nodes {
		if color[i] == white && visit(i) {
			return cycle
		}
	}
	return nil
}

// forceNode evaluates a node, forcing its dependencies first, and caches
// the result. A cached result (done or failed) is returned as-is; nodes are
// never re-run within one pipeline value.
func (p *Pipeline) forceNode(i int) Object {
	node := p.nodes[i]
	if node.State == NodeDone || node.State == NodeFailed {
		return node.Value
	}

	node.State = NodeRunning
	env := p.env.Extend()
	for _, dep := range node.Deps {
		val := p.forceNode(dep)
		// Dependency failures flow in as error values; the node's own
		// strictness decides what happens next.
		bound, err := env.Bind(p.nodes[dep].Name, val)
		if err != nil {
			node.Value = err
			node.State = NodeFailed
			return err
		}
		env = bound
	}

	val := Eval(node.Expr, env)
	node.Value = val
	if isError(val) {
		node.State = NodeFailed
	} else {
		node.State = NodeDone
	}
	return val
}

// Run evaluates every node in deterministic topological order, declaration
// order breaking ties. A failing node does not stop its siblings. Returns a
// dictionary of node name to final state.
func (p *Pipeline) Run() Object {
	for _, i := range p.topoOrder() {
		p.forceNode(i)
	}
	states := &Dict{Pairs: make(map[string]Object, len(p.nodes))}
	for _, n := range p.nodes {
		states.Pairs[n.Name] = &String{Value: n.State.String()}
	}
	return states
}

// topoOrder is Kahn's algorithm with a declaration-order frontier, so the
// schedule is reproducible run to run.
func (p *Pipeline) topoOrder() []int {
	indegree := make([]int, len(p.nodes))
	dependents := make([][]int, len(p.nodes))
	for i, n := range p.nodes {
		seen := make(map[int]bool, len(n.Deps))
		for _, dep := range n.Deps {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			indegree[i]++
			dependents[dep] = append(dependents[dep], i)
		}
	}

	order := make([]int, 0, len(p.nodes))
	ready := make([]bool, len(p.nodes))
	for len(order) < len(p.nodes) {
		next := -1
		for i := range p.nodes {
			if !ready[i] && indegree[i] == 0 {
				next = i
				break
			}
		}
		if next < 0 {
			break // unreachable once construction rejects cycles
		}
		ready[next] = true
		order = append(order, next)
		for _, d := range dependents[next] {
			indegree[d]--
		}
	}
	return order
}

// Node forces a single node by name.
func (p *Pipeline) Node(name string) Object {
	i, ok := p.index[name]
	if !ok {
		return newError("PIPE-0002", map[string]any{"Name": name})
	}
	return p.forceNode(i)
}

// NodeNames lists nodes in declaration order.
func (p *Pipeline) NodeNames() []string {
	names := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		names[i] = n.Name
	}
	return names
}

// DepsOf lists the dependency names of a node in first-reference order.
func (p *Pipeline) DepsOf(name string) ([]string, Object) {
	i, ok := p.index[name]
	if !ok {
		return nil, newError("PIPE-0002", map[string]any{"Name": name})
	}
	deps := make([]string, 0, len(p.nodes[i].Deps))
	seen := make(map[int]bool)
	for _, dep := range p.nodes[i].Deps {
		if seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, p.nodes[dep].Name)
	}
	return deps, nil
}

// States reports each node's current state without forcing anything.
func (p *Pipeline) States() *Dict {
	states := &Dict{Pairs: make(map[string]Object, len(p.nodes))}
	for _, n := range p.nodes {
		states.Pairs[n.Name] = &String{Value: n.State.String()}
	}
	return states
}

// freeIdentifiers collects identifier names that are not bound within the
// expression itself. Function parameters and let/set names inside nested
// blocks count as bound for their scope.
func freeIdentifiers(expr ast.Expression) []string {
	var out []string
	seen := make(map[string]bool)
	collectFree(expr, map[string]bool{}, func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

func collectFree(expr ast.Expression, bound map[string]bool, emit func(string)) {
	switch expr := expr.(type) {
	case *ast.Identifier:
		if !bound[expr.Value] {
			emit(expr.Value)
		}
	case *ast.PrefixExpression:
		collectFree(expr.Right, bound, emit)
	case *ast.InfixExpression:
		collectFree(expr.Left, bound, emit)
		collectFree(expr.Right, bound, emit)
	case *ast.PipeExpression:
		collectFree(expr.Left, bound, emit)
		collectFree(expr.Right, bound, emit)
	case *ast.CallExpression:
		collectFree(expr.Function, bound, emit)
		for _, a := range expr.Arguments {
			collectFree(a, bound, emit)
		}
	case *ast.IndexExpression:
		collectFree(expr.Left, bound, emit)
		collectFree(expr.Index, bound, emit)
	case *ast.DotExpression:
		collectFree(expr.Left, bound, emit)
	case *ast.ListLiteral:
		for _, e := range expr.Elements {
			collectFree(e, bound, emit)
		}
	case *ast.DictLiteral:
		for _, key := range expr.Keys {
			collectFree(expr.Pairs[key], bound, emit)
		}
	case *ast.IfExpression:
		collectFree(expr.Condition, bound, emit)
		collectFreeBlock(expr.Consequence, bound, emit)
		collectFreeBlock(expr.Alternative, bound, emit)
	case *ast.FunctionLiteral:
		inner := copyBound(bound)
		for _, p := range expr.Params {
			inner[p.Value] = true
		}
		collectFreeBlock(expr.Body, inner, emit)
	case *ast.PipelineLiteral:
		for _, d := range expr.Decls {
			collectFree(d.Value, bound, emit)
		}
	}
}

func collectFreeBlock(block *ast.BlockStatement, bound map[string]bool, emit func(string)) {
	if block == nil {
		return
	}
	bound = copyBound(bound)
	for _, stmt := range block.Statements {
		switch stmt := stmt.(type) {
		case *ast.ExpressionStatement:
			collectFree(stmt.Expression, bound, emit)
		case *ast.LetStatement:
			collectFree(stmt.Value, bound, emit)
			bound[stmt.Name.Value] = true
		case *ast.SetStatement:
			if !bound[stmt.Name.Value] {
				emit(stmt.Name.Value)
			}
			collectFree(stmt.Value, bound, emit)
		case *ast.ReturnStatement:
			collectFree(stmt.ReturnValue, bound, emit)
		case *ast.BlockStatement:
			collectFreeBlock(stmt, bound, emit)
		}
	}
}

func copyBound(bound map[string]bool) map[string]bool {
	out := make(map[string]bool, len(bound))
	for k, v := range bound {
		out[k] = v
	}
	return out
}
