package command

import (
	"context"

	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

// Executor sends one fully-encoded RESP command array and returns its
// reply. Both the single-node pipelined executor and the cluster
// executor implement this; Command.Run is written against the
// interface so command definitions are oblivious to which one a given
// client was built with.
type Executor interface {
	Execute(ctx context.Context, args [][]byte) (resp.Value, error)
}

// Command binds a command verb to an Input encoder and an Output
// decoder, giving a fully typed call signature: Run(ctx, executor, in)
// (out, error). Verb may be more than one wire token (e.g. "CLUSTER",
// "SLOTS"); Name joins it for logging/debugging.
type Command[In, Out any] struct {
	Verb   []string
	Encode Input[In]
	Decode Output[Out]
}

// New builds a Command from its verb tokens and its Input/Output pair.
func New[In, Out any](verb []string, encode Input[In], decode Output[Out]) Command[In, Out] {
	return Command[In, Out]{Verb: verb, Encode: encode, Decode: decode}
}

// Name joins the command's verb tokens for logging, e.g. "CLUSTER SLOTS".
func (c Command[In, Out]) Name() string {
	out := ""
	for i, tok := range c.Verb {
		if i > 0 {
			out += " "
		}
		out += tok
	}
	return out
}

// Run encodes in, sends it through exec, and decodes the reply. A RESP
// error reply is classified via rediserr.Classify before Decode ever
// sees it, so no Output implementation needs to special-case error
// values; Decode is only ever called on a non-error reply.
func (c Command[In, Out]) Run(ctx context.Context, exec Executor, in In) (Out, error) {
	var zero Out
	args := make([][]byte, 0, len(c.Verb)+2)
	for _, tok := range c.Verb {
		args = append(args, []byte(tok))
	}
	args = append(args, c.Encode(in)...)
	reply, err := exec.Execute(ctx, args)
	if err != nil {
		return zero, err
	}
	if reply.IsError() {
		return zero, classify(reply)
	}
	out, err := c.Decode(reply)
	if err != nil {
		return zero, err
	}
	return out, nil
}

// classify turns a RESP error value's text into a taxonomy member via
// rediserr.Classify. Kept as a thin wrapper so Run's error path reads
// as one step, not two.
func classify(v resp.Value) error {
	return rediserr.Classify(v.Str)
}
