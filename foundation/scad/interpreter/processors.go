// File: processors.go
// Title: Node Processors
// Description: One step function per AST node kind. Each processor reads
//              the step of its process record and either schedules more
//              work, consumes values produced by earlier steps, or finishes
//              by popping its record.
// Author: frikeldon
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package interpreter

import (
	"math"
	"unicode/utf8"

	mdwerror "github.com/frikeldon/openscad/foundation/core/error"
	"github.com/frikeldon/openscad/foundation/scad/ast"
	"github.com/frikeldon/openscad/foundation/scad/builtin"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/foundation/scad/value"
)

func defect(format string, args ...interface{}) *mdwerror.Error {
	return mdwerror.Newf(format, args...).
		WithCode(mdwerror.CodeDefect).
		WithOperation("interpreter.Run")
}

func missingStep(p *process) error {
	return defect("processor '%T' has no step %d", p.node, p.step).
		WithDetail("position", p.node.Position().String())
}

// dispatch runs one step of the top process record
func (e *environment) dispatch(p *process) error {
	switch n := p.node.(type) {
	case *ast.NumberLiteral:
		e.pushValue(value.Number(n.Value))
		e.popProcess()
	case *ast.StringLiteral:
		e.pushValue(value.String(n.Value))
		e.popProcess()
	case *ast.BooleanLiteral:
		e.pushValue(value.Bool(n.Value))
		e.popProcess()
	case *ast.UndefLiteral:
		e.pushValue(value.Undefined)
		e.popProcess()
	case *ast.Variable:
		e.pushValue(e.variable(n.Name))
		e.popProcess()
	case *ast.Vector:
		return e.processVector(p, n)
	case *ast.Range:
		return e.processRange(p, n)
	case *ast.FunctionCall:
		return e.processFunctionCall(p, n)
	case *ast.Parameter:
		e.processExpr(n.Value)
	case *ast.ParameterDefinition:
		e.processExpr(n.Value)
	case *ast.IndexAccessor:
		return e.processIndexAccessor(p, n)
	case *ast.PropertyAccessor:
		return e.processPropertyAccessor(p, n)
	case *ast.UnaryOp:
		return e.processUnaryOp(p, n)
	case *ast.BinaryOp:
		return e.processBinaryOp(p, n)
	case *ast.TernaryOp:
		return e.processTernaryOp(p, n)
	case *ast.Assignation:
		return e.processAssignation(p, n)
	case *ast.Block:
		return e.processBlock(p, n)
	case *ast.Conditional:
		return e.processConditional(p, n)
	case *ast.FunctionDefinition:
		e.topFrame().functions[n.Name] = n
		e.popProcess()
	case *ast.ModuleDefinition:
		e.topFrame().modules[n.Name] = n
		e.popProcess()
	case *ast.ModuleCall:
		return e.processModuleCall(p, n)
	case *ast.Empty:
		e.popProcess()
	case *ast.Program:
		return e.processProgram(p, n)
	default:
		return defect("no processor for node type %T", p.node)
	}
	return nil
}

// processExpr replaces the current record with expr, or yields undef when
// there is no expression
func (e *environment) processExpr(expr ast.Expr) {
	if expr == nil {
		e.pushValue(value.Undefined)
		e.popProcess()
		return
	}
	e.replaceProcess(expr)
}

func (e *environment) processVector(p *process, n *ast.Vector) error {
	switch p.step {
	case 0:
		e.pushProcess(nodesOf(n.Values)...)
	case 1:
		e.pushValue(value.Vector(e.popValues(len(n.Values))))
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processRange(p *process, n *ast.Range) error {
	switch p.step {
	case 0:
		if n.Increment != nil {
			e.pushProcess(n.Start, n.Increment, n.End)
		} else {
			e.pushProcess(n.Start, n.End)
		}
	case 1:
		end, endOK := value.AsNumber(e.popValue())
		increment, incOK := 1.0, true
		if n.Increment != nil {
			increment, incOK = value.AsNumber(e.popValue())
		}
		start, startOK := value.AsNumber(e.popValue())
		e.popProcess()

		if !endOK || !incOK || !startOK {
			e.pushValue(value.Undefined)
			return nil
		}
		if n.Increment == nil && start > end {
			start, end = end, start
		}
		e.pushValue(value.Range{Start: start, Increment: increment, End: end})
	default:
		return missingStep(p)
	}
	return nil
}

// arguments pairs evaluated values with the names of the call parameters
func arguments(params []*ast.Parameter, values []value.Value) []builtin.Argument {
	args := make([]builtin.Argument, len(params))
	for i, param := range params {
		args[i] = builtin.Argument{Name: param.Name, Value: values[i]}
	}
	return args
}

func (e *environment) processFunctionCall(p *process, n *ast.FunctionCall) error {
	switch p.step {
	case 0:
		p.userFunction, p.nativeFunc = e.function(n.Name)
		if p.userFunction == nil && p.nativeFunc == nil {
			e.pushValue(value.Undefined)
			e.popProcess()
			return nil
		}
		e.pushProcess(nodesOf(n.Parameters)...)
	case 1:
		args := arguments(n.Parameters, e.popValues(len(n.Parameters)))
		if fn := p.nativeFunc; fn != nil {
			if fn.Accepts(len(args)) {
				e.pushValue(fn.Call(args))
			} else {
				e.pushValue(value.Undefined)
			}
			e.popProcess()
			return nil
		}
		p.args = args
		e.pushFrame()
		e.pushProcess(nodesOf(p.userFunction.Parameters)...)
	case 2:
		defs := p.userFunction.Parameters
		bindParameters(e.topFrame(), defs, e.popValues(len(defs)), p.args)
		if p.userFunction.Expression == nil {
			e.pushValue(value.Undefined)
		} else {
			e.pushProcess(p.userFunction.Expression)
		}
	case 3:
		e.popFrame()
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processIndexAccessor(p *process, n *ast.IndexAccessor) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Index, n.Target)
	case 1:
		target := e.popValue()
		index := e.popValue()
		e.pushValue(indexValue(target, index))
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

var properties = map[string]float64{"x": 0, "y": 1, "z": 2}

func (e *environment) processPropertyAccessor(p *process, n *ast.PropertyAccessor) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Target)
	case 1:
		target := e.popValue()
		if idx, ok := properties[n.Property]; ok {
			e.pushValue(indexValue(target, value.Number(idx)))
		} else {
			e.pushValue(value.Undefined)
		}
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

// indexValue selects an element of a vector or a character of a string.
// Anything other than an in-bounds integer index is undef.
func indexValue(target, index value.Value) value.Value {
	f, ok := value.AsNumber(index)
	if !ok || f != math.Trunc(f) || f < 0 {
		return value.Undefined
	}

	switch t := target.(type) {
	case value.Vector:
		if f < float64(len(t)) {
			return t[int(f)]
		}
	case value.String:
		if f >= float64(utf8.RuneCountInString(string(t))) {
			return value.Undefined
		}
		i := int(f)
		s := string(t)
		for n := 0; len(s) > 0; n++ {
			r, size := utf8.DecodeRuneInString(s)
			if n == i {
				return value.String(string(r))
			}
			s = s[size:]
		}
	}
	return value.Undefined
}

func (e *environment) processUnaryOp(p *process, n *ast.UnaryOp) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Value)
	case 1:
		result, ok := unaryOperation(n.Operator, e.popValue())
		if !ok {
			return defect("unknown unary operator '%s'", n.Operator)
		}
		e.pushValue(result)
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processBinaryOp(p *process, n *ast.BinaryOp) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Left, n.Right)
	case 1:
		right := e.popValue()
		left := e.popValue()
		result, ok := binaryOperation(n.Operator, left, right)
		if !ok {
			return defect("unknown binary operator '%s'", n.Operator)
		}
		e.pushValue(result)
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processTernaryOp(p *process, n *ast.TernaryOp) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Condition)
	case 1:
		if value.Truthy(e.popValue()) {
			e.processExpr(n.Right)
		} else {
			e.processExpr(n.Wrong)
		}
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processAssignation(p *process, n *ast.Assignation) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Value)
		if n.Value == nil {
			e.pushValue(value.Undefined)
		}
	case 1:
		e.topFrame().variables[n.Variable] = e.popValue()
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processBlock(p *process, n *ast.Block) error {
	switch p.step {
	case 0:
		e.pushFrame()
		e.pushProcess(nodesOf(n.Sentences)...)
	case 1:
		f := e.popFrame()
		if len(f.objects) > 0 {
			e.pushObject(csg.NewGroup(f.objects))
		}
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processConditional(p *process, n *ast.Conditional) error {
	switch p.step {
	case 0:
		e.pushProcess(n.Condition)
	case 1:
		branch := n.Fail
		if value.Truthy(e.popValue()) {
			branch = n.Pass
		}
		e.popProcess()
		if branch != nil {
			e.pushProcess(branch)
		}
	default:
		return missingStep(p)
	}
	return nil
}

// childObjects returns the objects produced by a module call's children.
// A block child wraps its objects in one group, which is unwrapped here.
func childObjects(children ast.Statement, objects []csg.Node) []csg.Node {
	if _, isBlock := children.(*ast.Block); isBlock && len(objects) == 1 {
		if g, ok := objects[0].(*csg.Group); ok {
			objects = g.Objects
		}
	}
	if len(objects) == 0 {
		return nil
	}
	return objects
}

func (e *environment) processModuleCall(p *process, n *ast.ModuleCall) error {
	switch p.step {
	case 0:
		p.userModule, p.nativeModule = e.module(n.Name)
		if p.userModule == nil && p.nativeModule == nil {
			e.popProcess()
			return nil
		}
		p.mark = len(e.topFrame().objects)
		nodes := make([]ast.Node, 0, len(n.Parameters)+1)
		if n.Children != nil {
			nodes = append(nodes, n.Children)
		}
		nodes = append(nodes, nodesOf(n.Parameters)...)
		e.pushProcess(nodes...)
	case 1:
		args := arguments(n.Parameters, e.popValues(len(n.Parameters)))
		p.childrenNodes = childObjects(n.Children, e.takeObjects(p.mark))

		if m := p.nativeModule; m != nil {
			e.pushObject(m.Build(m.NewCall(e, p.childrenNodes, args)))
			e.popProcess()
			return nil
		}
		p.args = args
		f := e.pushFrame()
		f.children = p.childrenNodes
		if f.children == nil {
			f.children = []csg.Node{}
		}
		e.pushProcess(nodesOf(p.userModule.Parameters)...)
	case 2:
		defs := p.userModule.Parameters
		bindParameters(e.topFrame(), defs, e.popValues(len(defs)), p.args)
		if body, ok := p.userModule.Body.(*ast.Block); ok {
			e.pushProcess(nodesOf(body.Sentences)...)
		} else if p.userModule.Body != nil {
			e.pushProcess(p.userModule.Body)
		}
	case 3:
		f := e.popFrame()
		if len(f.objects) > 0 {
			e.pushObject(csg.NewGroup(f.objects))
		}
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}

func (e *environment) processProgram(p *process, n *ast.Program) error {
	switch p.step {
	case 0:
		e.pushFrame()
		e.pushProcess(nodesOf(n.Sentences)...)
	case 1:
		e.result = e.popFrame().objects
		e.popProcess()
	default:
		return missingStep(p)
	}
	return nil
}
