package ast

// Visitor walks a document tree. Every method has a default implementation
// in Base that recurses into the node's children. Implementations embed Base,
// override the methods they need and start the traversal with Walk. An
// override that still wants the default recursion calls the matching Walk*
// function with its own visitor.
type Visitor interface {
	VisitBlocks(blocks *[]Block) error
	VisitBlock(c *Cursor[Block]) error
	VisitInlines(inlines *[]Inline) error
	VisitInline(c *Cursor[Inline]) error
	VisitParameters(params []Parameter) error

	VisitHeading(h *Heading) error
	VisitPlain(p *Plain) error
	VisitParagraph(p *Paragraph) error
	VisitBlockQuote(q *BlockQuote) error
	VisitList(l *List) error
	VisitListItem(i *ListItem) error

	VisitText(t *Text) error
	VisitStyled(s *Styled) error
	VisitCode(c *Code) error
	VisitCodeBlock(b *CodeBlock) error
	VisitImage(i *Image) error
	VisitLink(l *Link) error
	VisitHTML(h *HTML) error
	VisitMath(m *Math) error
	VisitCommand(c *Command) error
	VisitScript(s *Script) error
}

type binder interface {
	bind(v Visitor)
}

// Walk traverses blocks with v.
func Walk(v Visitor, blocks *[]Block) error {
	return bind(v).VisitBlocks(blocks)
}

// bind points an embedded Base at v so that its default methods dispatch
// to v's overrides. Every exported entry point binds, so a walk may start
// at any Walk* helper.
func bind(v Visitor) Visitor {
	if b, ok := v.(binder); ok {
		b.bind(v)
	}
	return v
}

// Base provides the default method set of Visitor.
type Base struct {
	self Visitor
}

func (b *Base) bind(v Visitor) {
	b.self = v
}

func (b *Base) outer() Visitor {
	if b.self != nil {
		return b.self
	}
	return b
}

func (b *Base) VisitBlocks(blocks *[]Block) error        { return WalkBlocks(b.outer(), blocks) }
func (b *Base) VisitBlock(c *Cursor[Block]) error        { return WalkBlock(b.outer(), c) }
func (b *Base) VisitInlines(inlines *[]Inline) error     { return WalkInlines(b.outer(), inlines) }
func (b *Base) VisitInline(c *Cursor[Inline]) error      { return WalkInline(b.outer(), c) }
func (b *Base) VisitParameters(params []Parameter) error { return WalkParameters(b.outer(), params) }
func (b *Base) VisitHeading(h *Heading) error            { return b.outer().VisitInlines(&h.Inner) }
func (b *Base) VisitPlain(p *Plain) error                { return b.outer().VisitInlines(&p.Inner) }
func (b *Base) VisitParagraph(p *Paragraph) error        { return b.outer().VisitInlines(&p.Inner) }
func (b *Base) VisitBlockQuote(q *BlockQuote) error      { return b.outer().VisitInlines(&q.Inner) }
func (b *Base) VisitList(l *List) error                  { return b.outer().VisitBlocks(&l.Items) }
func (b *Base) VisitListItem(i *ListItem) error          { return b.outer().VisitBlocks(&i.Inner) }
func (b *Base) VisitText(*Text) error                    { return nil }
func (b *Base) VisitStyled(s *Styled) error              { return b.outer().VisitInlines(&s.Inner) }
func (b *Base) VisitCode(*Code) error                    { return nil }
func (b *Base) VisitCodeBlock(*CodeBlock) error          { return nil }
func (b *Base) VisitImage(i *Image) error                { return b.outer().VisitInlines(&i.Inner) }
func (b *Base) VisitLink(l *Link) error                  { return b.outer().VisitInlines(&l.Inner) }
func (b *Base) VisitHTML(*HTML) error                    { return nil }
func (b *Base) VisitMath(*Math) error                    { return nil }
func (b *Base) VisitCommand(c *Command) error            { return WalkCommand(b.outer(), c) }
func (b *Base) VisitScript(s *Script) error              { return WalkScript(b.outer(), s) }

// WalkBlocks visits each block of *blocks through v.VisitBlock.
func WalkBlocks(v Visitor, blocks *[]Block) error {
	return walkSlice(blocks, bind(v).VisitBlock)
}

// WalkInlines visits each inline of *inlines through v.VisitInline.
func WalkInlines(v Visitor, inlines *[]Inline) error {
	return walkSlice(inlines, bind(v).VisitInline)
}

// WalkBlock dispatches the cursor's block to the matching Visit method.
func WalkBlock(v Visitor, c *Cursor[Block]) error {
	bind(v)
	switch n := c.Node().(type) {
	case *Heading:
		return v.VisitHeading(n)
	case *Plain:
		return v.VisitPlain(n)
	case *Paragraph:
		return v.VisitParagraph(n)
	case *BlockQuote:
		return v.VisitBlockQuote(n)
	case *List:
		return v.VisitList(n)
	case *ListItem:
		return v.VisitListItem(n)
	}
	return nil
}

// WalkInline dispatches the cursor's inline to the matching Visit method.
// Breaks and rules have no method of their own.
func WalkInline(v Visitor, c *Cursor[Inline]) error {
	bind(v)
	switch n := c.Node().(type) {
	case *Text:
		return v.VisitText(n)
	case *Styled:
		return v.VisitStyled(n)
	case *Code:
		return v.VisitCode(n)
	case *CodeBlock:
		return v.VisitCodeBlock(n)
	case *Image:
		return v.VisitImage(n)
	case *Link:
		return v.VisitLink(n)
	case *HTML:
		return v.VisitHTML(n)
	case *Math:
		return v.VisitMath(n)
	case *Command:
		return v.VisitCommand(n)
	case *Script:
		return v.VisitScript(n)
	}
	return nil
}

// WalkCommand visits the parameters and then the body of c.
func WalkCommand(v Visitor, c *Command) error {
	bind(v)
	if err := v.VisitParameters(c.Parameters); err != nil {
		return err
	}
	if c.Body == nil {
		return nil
	}
	return v.VisitBlocks(&c.Body)
}

// WalkParameters visits the content of markdown-valued parameters.
func WalkParameters(v Visitor, params []Parameter) error {
	bind(v)
	for i := range params {
		content, ok := params[i].Value.(ContentValue)
		if !ok {
			continue
		}
		blocks := []Block(content)
		if err := v.VisitBlocks(&blocks); err != nil {
			return err
		}
		params[i].Value = ContentValue(blocks)
	}
	return nil
}

// WalkScript visits every markdown group of s.
func WalkScript(v Visitor, s *Script) error {
	bind(v)
	for i := range s.Groups {
		if err := v.VisitBlocks(&s.Groups[i]); err != nil {
			return err
		}
	}
	return nil
}

// Inspect calls fn for every node in depth-first order. Children are
// skipped when fn returns false.
func Inspect(blocks []Block, fn func(Node) bool) {
	in := &inspector{fn: fn}
	_ = Walk(in, &blocks)
}

type inspector struct {
	Base
	fn func(Node) bool
}

func (in *inspector) VisitBlock(c *Cursor[Block]) error {
	if !in.fn(c.Node()) {
		return nil
	}
	return WalkBlock(in, c)
}

func (in *inspector) VisitInline(c *Cursor[Inline]) error {
	if !in.fn(c.Node()) {
		return nil
	}
	return WalkInline(in, c)
}
