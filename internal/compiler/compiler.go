package compiler

import (
	"fmt"

	"coro/internal/ast"
	"coro/internal/code"
	"coro/internal/object"
	"coro/internal/token"
)

// State carries what survives between compilations: the routine table
// and the top-level names defined so far. The REPL feeds the same State
// to each line's compiler so earlier bindings stay resolvable.
type State struct {
	routines map[string]*object.Routine
	globals  []string
}

func NewState() *State {
	return &State{routines: map[string]*object.Routine{}}
}

func (s *State) Routine(name string) (*object.Routine, bool) {
	r, ok := s.routines[name]
	return r, ok
}

type compilationScope struct {
	instructions code.Instructions
	constants    []object.Object
}

// frameSymbols tracks the names visible inside one frame. Routines see
// only their parameters and locals, never the enclosing frame, so each
// def body gets a fresh frame.
type frameSymbols struct {
	scopes [][]string
}

func (f *frameSymbols) enter() {
	f.scopes = append(f.scopes, []string{})
}

func (f *frameSymbols) leave() {
	f.scopes = f.scopes[:len(f.scopes)-1]
}

func (f *frameSymbols) declare(name string) {
	top := len(f.scopes) - 1
	for _, n := range f.scopes[top] {
		if n == name {
			return
		}
	}
	f.scopes[top] = append(f.scopes[top], name)
}

func (f *frameSymbols) resolve(name string) bool {
	for i := len(f.scopes) - 1; i >= 0; i-- {
		for _, n := range f.scopes[i] {
			if n == name {
				return true
			}
		}
	}
	return false
}

type Compiler struct {
	state      *State
	scopes     []compilationScope
	scopeIndex int
	frames     []*frameSymbols
}

func New() *Compiler {
	return NewWithState(NewState())
}

func NewWithState(state *State) *Compiler {
	root := &frameSymbols{scopes: [][]string{{}}}
	root.scopes[0] = append(root.scopes[0], state.globals...)
	return &Compiler{
		state:  state,
		scopes: []compilationScope{{instructions: code.Instructions{}}},
		frames: []*frameSymbols{root},
	}
}

// Compile lowers the program into the top-level instruction block,
// returning it as the routine "main" to be run inside the root
// coroutine. Its value is left as the VM's Result once Run returns.
func (c *Compiler) Compile(program *ast.Program) (*object.Routine, error) {
	if len(program.Binds) > 0 {
		if err := c.compileBinds(program.Binds); err != nil {
			return nil, err
		}
	}
	c.emit(code.OpReturn)

	scope := c.scopes[c.scopeIndex]
	main := &object.Routine{
		Name:         "main",
		Instructions: scope.instructions,
		Constants:    scope.constants,
	}

	// Top-level lets stay resolvable on the next compilation.
	for _, name := range c.frames[0].scopes[0] {
		found := false
		for _, g := range c.state.globals {
			if g == name {
				found = true
				break
			}
		}
		if !found {
			c.state.globals = append(c.state.globals, name)
		}
	}

	return main, nil
}

/* -------------------- binds -------------------- */

// compileBinds lowers a bind sequence: every value but the last is
// discarded, the last is the sequence's value.
func (c *Compiler) compileBinds(binds []ast.Bind) error {
	for i, bind := range binds {
		if err := c.compileBind(bind); err != nil {
			return err
		}
		if i < len(binds)-1 {
			c.emit(code.OpPop)
		}
	}
	return nil
}

func (c *Compiler) compileBind(bind ast.Bind) error {
	switch bind := bind.(type) {
	case *ast.DefBind:
		return c.compileDef(bind)
	case *ast.LetBind:
		return c.compileLet(bind)
	case ast.Cmd:
		return c.compileCmd(bind)
	default:
		return fmt.Errorf("unknown bind %T", bind)
	}
}

func (c *Compiler) compileDef(bind *ast.DefBind) error {
	if _, ok := c.state.routines[bind.Name]; ok {
		return fmt.Errorf("routine '%s' already defined", bind.Name)
	}

	c.enterRoutine(bind.Params)
	if err := c.compileCmd(bind.Body); err != nil {
		return err
	}
	c.emit(code.OpReturn)
	routine := c.leaveRoutine(bind.Name, bind.Params)

	c.state.routines[bind.Name] = routine

	// A def is a bind, so it contributes a value to its block.
	c.emit(code.OpUnit)
	return nil
}

func (c *Compiler) compileLet(bind *ast.LetBind) error {
	if err := c.compileCmd(bind.Init); err != nil {
		return err
	}
	idx := c.addConstant(&object.String{Value: bind.Name})
	c.emit(code.OpBindName, idx)
	c.currentFrame().declare(bind.Name)
	return nil
}

/* -------------------- commands -------------------- */

func (c *Compiler) compileCmd(cmd ast.Cmd) error {
	switch cmd := cmd.(type) {
	case *ast.PrintCmd:
		if err := c.compileExpr(cmd.Value); err != nil {
			return err
		}
		c.emit(code.OpPrint)
		return nil

	case *ast.CreateCmd:
		routine, ok := c.state.routines[cmd.Routine]
		if !ok {
			return fmt.Errorf("no routine named '%s'", cmd.Routine)
		}
		idx := c.addConstant(routine)
		c.emit(code.OpCreate, idx)
		return nil

	case *ast.ResumeCmd:
		if err := c.compileExpr(cmd.Target); err != nil {
			return err
		}
		for _, arg := range cmd.Args {
			if err := c.compileExpr(arg); err != nil {
				return err
			}
		}
		c.emit(code.OpResume, len(cmd.Args))
		return nil

	case *ast.YieldCmd:
		if err := c.compileExpr(cmd.Value); err != nil {
			return err
		}
		c.emit(code.OpYield)
		return nil

	case *ast.WhileCmd:
		return c.compileWhile(cmd)

	case *ast.IfCmd:
		return c.compileIf(cmd)

	case ast.Expr:
		return c.compileExpr(cmd)

	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
}

// compileWhile emits one test-then-body-then-jump-back structure. The
// loop owns a single scope entered once and reused across iterations,
// so a `let` in the body is visible to the next iteration's condition.
// The loop's value is unit.
func (c *Compiler) compileWhile(cmd *ast.WhileCmd) error {
	c.emit(code.OpEnterScope)
	c.currentFrame().enter()

	condPos := len(c.currentInstructions())
	if err := c.compileExpr(cmd.Cond); err != nil {
		return err
	}
	exitJump := c.emit(code.OpJumpNotTruthy, 9999)

	if block, ok := cmd.Body.(*ast.BlockExpr); ok {
		// The body block shares the loop's scope.
		if err := c.compileBinds(block.Binds); err != nil {
			return err
		}
	} else {
		if err := c.compileExpr(cmd.Body); err != nil {
			return err
		}
	}
	c.emit(code.OpPop)
	c.emit(code.OpJump, condPos)

	c.changeOperand(exitJump, len(c.currentInstructions()))
	c.emit(code.OpLeaveScope)
	c.currentFrame().leave()

	c.emit(code.OpUnit)
	return nil
}

func (c *Compiler) compileIf(cmd *ast.IfCmd) error {
	if err := c.compileExpr(cmd.Cond); err != nil {
		return err
	}
	elseJump := c.emit(code.OpJumpNotTruthy, 9999)

	if err := c.compileExpr(cmd.Then); err != nil {
		return err
	}
	endJump := c.emit(code.OpJump, 9999)

	c.changeOperand(elseJump, len(c.currentInstructions()))
	if err := c.compileExpr(cmd.Else); err != nil {
		return err
	}
	c.changeOperand(endJump, len(c.currentInstructions()))
	return nil
}

/* -------------------- expressions -------------------- */

func (c *Compiler) compileExpr(expr ast.Expr) error {
	switch expr := expr.(type) {
	case *ast.BlockExpr:
		c.emit(code.OpEnterScope)
		c.currentFrame().enter()
		if err := c.compileBinds(expr.Binds); err != nil {
			return err
		}
		c.emit(code.OpLeaveScope)
		c.currentFrame().leave()
		return nil

	case *ast.GroupExpr:
		return c.compileCmd(expr.Inner)

	case *ast.Identifier:
		if !c.currentFrame().resolve(expr.Name) {
			return fmt.Errorf("no binding for name '%s'", expr.Name)
		}
		idx := c.addConstant(&object.String{Value: expr.Name})
		c.emit(code.OpGetName, idx)
		return nil

	case *ast.InfixExpr:
		if err := c.compileExpr(expr.Left); err != nil {
			return err
		}
		if err := c.compileExpr(expr.Right); err != nil {
			return err
		}
		switch expr.Op {
		case token.PLUS:
			c.emit(code.OpAdd)
		case token.MINUS:
			c.emit(code.OpSub)
		case token.STAR:
			c.emit(code.OpMul)
		case token.SLASH:
			c.emit(code.OpDiv)
		case token.EQ:
			c.emit(code.OpEqual)
		case token.LT:
			c.emit(code.OpLess)
		default:
			return fmt.Errorf("unknown operator %s", expr.Op)
		}
		return nil

	case *ast.PrefixExpr:
		if err := c.compileExpr(expr.Right); err != nil {
			return err
		}
		switch expr.Op {
		case token.MINUS:
			c.emit(code.OpMinus)
		case token.NOT:
			c.emit(code.OpBang)
		default:
			return fmt.Errorf("unknown operator %s", expr.Op)
		}
		return nil

	case *ast.NumberLit:
		idx := c.addConstant(&object.Number{Value: expr.Value})
		c.emit(code.OpConstant, idx)
		return nil

	case *ast.StringLit:
		idx := c.addConstant(&object.String{Value: expr.Value})
		c.emit(code.OpConstant, idx)
		return nil

	case *ast.BoolLit:
		if expr.Value {
			c.emit(code.OpTrue)
		} else {
			c.emit(code.OpFalse)
		}
		return nil

	case *ast.UnitLit:
		c.emit(code.OpUnit)
		return nil

	default:
		return fmt.Errorf("unknown expression %T", expr)
	}
}

/* -------------------- emit helpers -------------------- */

func (c *Compiler) currentInstructions() code.Instructions {
	return c.scopes[c.scopeIndex].instructions
}

func (c *Compiler) currentFrame() *frameSymbols {
	return c.frames[len(c.frames)-1]
}

func (c *Compiler) emit(op code.Opcode, operands ...int) int {
	ins := code.Make(op, operands...)
	pos := len(c.currentInstructions())
	c.scopes[c.scopeIndex].instructions = append(c.currentInstructions(), ins...)
	return pos
}

// changeOperand rewrites the operand of the (two-byte-operand) jump at
// opPos to an absolute index within the block.
func (c *Compiler) changeOperand(opPos int, operand int) {
	op := code.Opcode(c.currentInstructions()[opPos])
	newIns := code.Make(op, operand)
	ins := c.scopes[c.scopeIndex].instructions
	copy(ins[opPos:], newIns)
}

// addConstant interns value in the current block's constant pool.
// Literal constants are deduplicated; routines compare by identity.
func (c *Compiler) addConstant(value object.Object) int {
	constants := c.scopes[c.scopeIndex].constants
	for i, existing := range constants {
		if sameConstant(existing, value) {
			return i
		}
	}
	c.scopes[c.scopeIndex].constants = append(constants, value)
	return len(constants)
}

func sameConstant(a, b object.Object) bool {
	switch a := a.(type) {
	case *object.Number:
		b, ok := b.(*object.Number)
		return ok && a.Value == b.Value
	case *object.String:
		b, ok := b.(*object.String)
		return ok && a.Value == b.Value
	default:
		return a == b
	}
}

func (c *Compiler) enterRoutine(params []string) {
	c.scopes = append(c.scopes, compilationScope{instructions: code.Instructions{}})
	c.scopeIndex++

	frame := &frameSymbols{scopes: [][]string{{}}}
	frame.scopes[0] = append(frame.scopes[0], params...)
	c.frames = append(c.frames, frame)
}

func (c *Compiler) leaveRoutine(name string, params []string) *object.Routine {
	scope := c.scopes[c.scopeIndex]
	c.scopes = c.scopes[:c.scopeIndex]
	c.scopeIndex--
	c.frames = c.frames[:len(c.frames)-1]

	return &object.Routine{
		Name:         name,
		Params:       params,
		Instructions: scope.instructions,
		Constants:    scope.constants,
	}
}
