package cfg

import "fmt"

// Validate checks every invariant the builder promises to uphold once a
// CFG is complete: every block's edge list agrees with its
// terminator, conditionals branch exactly two ways, no bare self-loop
// sneaks in outside an explicit DO forever, and loop back-edges land on
// their header with a Jump.
func Validate(g *CFG) error {
	incoming := make(map[BlockID][]Edge)
	for _, b := range g.Blocks {
		for _, e := range b.Edges {
			incoming[e.Target] = append(incoming[e.Target], e)
		}
	}

	for _, b := range g.Blocks {
		if err := validateTerminator(g, b); err != nil {
			return err
		}
		if err := validateConditional(b); err != nil {
			return err
		}
		if err := validateSelfLoop(b); err != nil {
			return err
		}
	}

	for id, edges := range incoming {
		target := g.Block(id)
		if target.Kind != SubroutineLanding {
			continue
		}
		for _, e := range edges {
			if e.Kind != Return {
				return fmt.Errorf("block %d: SubroutineLanding reached by %s edge, want only Return", id, e.Kind)
			}
		}
	}

	if err := validateBackEdges(g); err != nil {
		return err
	}
	return nil
}

// validateTerminator checks that a block with zero outgoing edges ends in
// a terminator statement. A terminated block may still carry edges (a
// GOTO's Jump, a GOSUB's Call), so the converse is not checked.
func validateTerminator(g *CFG, b *BasicBlock) error {
	if b.ID == g.Exit {
		return nil
	}
	if len(b.Edges) == 0 && !b.Terminated {
		return fmt.Errorf("block %d (%s): no outgoing edge and no terminator", b.ID, b.Kind)
	}
	return nil
}

// validateConditional checks that a block with any CondTrue/CondFalse edge
// has exactly one of each.
func validateConditional(b *BasicBlock) error {
	var t, f int
	for _, e := range b.Edges {
		switch e.Kind {
		case CondTrue:
			t++
		case CondFalse:
			f++
		}
	}
	if t+f == 0 {
		return nil
	}
	if t != 1 || f != 1 {
		return fmt.Errorf("block %d (%s): conditional block needs exactly one CondTrue and one CondFalse edge, has %d/%d", b.ID, b.Kind, t, f)
	}
	return nil
}

// validateSelfLoop rejects a block that jumps to itself unless it is a
// LoopBody, the shape buildDoForever uses for DO (forever) and WHILE 1.
func validateSelfLoop(b *BasicBlock) error {
	for _, e := range b.Edges {
		if e.Target != b.ID {
			continue
		}
		if b.Kind != LoopBody || e.Kind != Jump {
			return fmt.Errorf("block %d (%s): unexpected self-loop via %s edge", b.ID, b.Kind, e.Kind)
		}
	}
	return nil
}

// validateBackEdges checks that any edge landing on a LoopHeader from a
// later-constructed block (a true back-edge, since BlockIDs are assigned
// in construction order) is a Jump.
func validateBackEdges(g *CFG) error {
	for _, b := range g.Blocks {
		for _, e := range b.Edges {
			target := g.Block(e.Target)
			if target.Kind != LoopHeader {
				continue
			}
			if b.ID <= target.ID {
				continue // Forward edge into the header, not a back-edge.
			}
			if e.Kind != Jump {
				return fmt.Errorf("block %d: back-edge to header %d uses %s, want Jump", b.ID, target.ID, e.Kind)
			}
		}
	}
	return nil
}
