// SPDX-License-Identifier: EPL-2.0

package engine

import (
	"fmt"

	"github.com/ik5/jass/arena"
)

// CommandKind selects what a Command does.
type CommandKind uint8

const (
	CmdNone CommandKind = iota
	CmdReplaceGenerators
	CmdReplaceAuditor
	CmdPlayAuditor
	CmdSetParam
	CmdSetParams
	CmdReplaceVoices
	CmdAllNotesOff
)

func (k CommandKind) String() string {
	switch k {
	case CmdReplaceGenerators:
		return "ReplaceGenerators"
	case CmdReplaceAuditor:
		return "ReplaceAuditor"
	case CmdPlayAuditor:
		return "PlayAuditor"
	case CmdSetParam:
		return "SetParam"
	case CmdSetParams:
		return "SetParams"
	case CmdReplaceVoices:
		return "ReplaceVoices"
	case CmdAllNotesOff:
		return "AllNotesOff"
	default:
		return "None"
	}
}

// Command is a request from the control side to the audio side. It is
// passed by value; only the fields of its Kind are set.
type Command struct {
	Kind CommandKind

	Generators *arena.Cell[Collection]
	Generator  *arena.Cell[*Generator]
	Voices     *arena.Cell[[]Voice]

	Param  ParamID
	Value  float64
	Params Params
}

func (c Command) String() string {
	switch c.Kind {
	case CmdSetParam:
		return fmt.Sprintf("%s{%s=%v}", c.Kind, c.Param, c.Value)
	case CmdReplaceGenerators:
		n := 0
		if c.Generators != nil {
			n = len(c.Generators.Value())
		}
		return fmt.Sprintf("%s{%d generators}", c.Kind, n)
	case CmdReplaceVoices:
		n := 0
		if c.Voices != nil {
			n = len(c.Voices.Value())
		}
		return fmt.Sprintf("%s{%d voices}", c.Kind, n)
	}
	return c.Kind.String()
}

// ReplaceGenerators installs gens as the rendered collection.
func ReplaceGenerators(gens *arena.Cell[Collection]) Command {
	return Command{Kind: CmdReplaceGenerators, Generators: gens}
}

// ReplaceAuditor installs g as the auditor; g may be nil.
func ReplaceAuditor(g *arena.Cell[*Generator]) Command {
	return Command{Kind: CmdReplaceAuditor, Generator: g}
}

// PlayAuditor triggers the first voice of the auditor.
func PlayAuditor() Command {
	return Command{Kind: CmdPlayAuditor}
}

// SetParam changes one field of g's params.
func SetParam(g *arena.Cell[*Generator], id ParamID, v float64) Command {
	return Command{Kind: CmdSetParam, Generator: g, Param: id, Value: v}
}

// SetParams replaces all of g's params.
func SetParams(g *arena.Cell[*Generator], p Params) Command {
	return Command{Kind: CmdSetParams, Generator: g, Params: p}
}

// ReplaceVoices installs a new voice bank in g.
func ReplaceVoices(g *arena.Cell[*Generator], voices *arena.Cell[[]Voice]) Command {
	return Command{Kind: CmdReplaceVoices, Generator: g, Voices: voices}
}

// AllNotesOff releases every voice of every generator.
func AllNotesOff() Command {
	return Command{Kind: CmdAllNotesOff}
}
