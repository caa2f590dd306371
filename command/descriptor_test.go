package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/goredis/rediserr"
	"github.com/wegjgwioj/goredis/resp"
)

type stubExecutor struct {
	reply resp.Value
	err   error
	gotArgs [][]byte
}

func (s *stubExecutor) Execute(ctx context.Context, args [][]byte) (resp.Value, error) {
	s.gotArgs = args
	return s.reply, s.err
}

func TestCommandRunDecodesSuccess(t *testing.T) {
	get := New[string, *string]([]string{"GET"}, String, OptionalReply(MultiString))
	exec := &stubExecutor{reply: resp.BulkStringFrom("bar")}

	out, err := get.Run(context.Background(), exec, "foo")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, "bar", *out)
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("foo")}, exec.gotArgs)
}

func TestCommandRunClassifiesErrorReply(t *testing.T) {
	lpush := New[string, int64]([]string{"LPUSH"}, String, IntegerReply)
	exec := &stubExecutor{reply: resp.Err("WRONGTYPE Operation against a key holding the wrong kind of value")}

	_, err := lpush.Run(context.Background(), exec, "foo")
	require.Error(t, err)
	var wt *rediserr.WrongType
	assert.ErrorAs(t, err, &wt)
}

func TestCommandRunPropagatesExecutorError(t *testing.T) {
	get := New[string, *string]([]string{"GET"}, String, OptionalReply(MultiString))
	exec := &stubExecutor{err: rediserr.ErrClosed}

	_, err := get.Run(context.Background(), exec, "foo")
	assert.ErrorIs(t, err, rediserr.ErrClosed)
}

func TestCommandNameJoinsVerbTokens(t *testing.T) {
	cmd := New[string, *string]([]string{"CLUSTER", "SLOTS"}, String, OptionalReply(MultiString))
	assert.Equal(t, "CLUSTER SLOTS", cmd.Name())
}
