package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeBoundEncode(t *testing.T) {
	assert.Equal(t, "-inf", string(RangeBound{NegInf: true}.Encode()))
	assert.Equal(t, "+inf", string(RangeBound{PosInf: true}.Encode()))
	assert.Equal(t, "(1.5", string(RangeBound{Exclusive: true, Value: 1.5}.Encode()))
	assert.Equal(t, "2", string(RangeBound{Value: 2}.Encode()))
}

func TestLexBoundEncode(t *testing.T) {
	assert.Equal(t, "-", string(LexBound{Min: true}.Encode()))
	assert.Equal(t, "+", string(LexBound{Max: true}.Encode()))
	assert.Equal(t, "(c", string(LexBound{Exclusive: true, Value: "c"}.Encode()))
	assert.Equal(t, "[c", string(LexBound{Value: "c"}.Encode()))
}

func TestScoreMemberEncodeOrdersScoreThenMember(t *testing.T) {
	out := ScoreMember{Score: 1.5, Member: "a"}.Encode()
	want := []string{"1.5", "a"}
	for i, tok := range out {
		assert.Equal(t, want[i], string(tok))
	}
}

func TestScoreMembersConcatenatesInOrder(t *testing.T) {
	out := ScoreMembers([]ScoreMember{{Score: 1, Member: "a"}, {Score: 2, Member: "b"}})
	assert.Equal(t, [][]byte{[]byte("1"), []byte("a"), []byte("2"), []byte("b")}, out)
}

func TestStreamEntryInputPutsIDFirst(t *testing.T) {
	out := StreamEntryInput{ID: "*", Fields: map[string]string{"f": "v"}}.Encode()
	want := [][]byte{[]byte("*"), []byte("f"), []byte("v")}
	assert.Equal(t, want, out)
}

func TestWeightsEmptyProducesNoTokens(t *testing.T) {
	assert.Nil(t, Weights(nil))
	out := Weights([]float64{1, 2.5})
	assert.Equal(t, [][]byte{[]byte("WEIGHTS"), []byte("1"), []byte("2.5")}, out)
}

func TestLimitEncodesOffsetThenCount(t *testing.T) {
	out := Limit(10, 20)
	assert.Equal(t, [][]byte{[]byte("LIMIT"), []byte("10"), []byte("20")}, out)
}

func TestFlagEmitsTokenOnlyWhenPresent(t *testing.T) {
	assert.Nil(t, WithScores(false))
	assert.Equal(t, [][]byte{[]byte("WITHSCORES")}, WithScores(true))
}

func TestVarargsConcatenatesEachElement(t *testing.T) {
	out := Varargs(String)([]string{"a", "b", "c"})
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, out)
}

func TestOptionalNilEmitsNothing(t *testing.T) {
	assert.Nil(t, Optional(Long)(nil))
	v := int64(5)
	assert.Equal(t, [][]byte{[]byte("5")}, Optional(Long)(&v))
}

func TestLongLatEncodesLongitudeThenLatitude(t *testing.T) {
	out := LongLat{Longitude: 13.361389, Latitude: 38.115556}.Encode()
	assert.Len(t, out, 2)
	assert.Equal(t, "13.361389", string(out[0]))
	assert.Equal(t, "38.115556", string(out[1]))
}

func TestIdleTimeEncodesTokenThenValue(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("IDLETIME"), []byte("30")}, IdleTime(30))
}

func TestFreqEncodesTokenThenValue(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("FREQ"), []byte("5")}, Freq(5))
}

func TestCountEncodesTokenThenValue(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("COUNT"), []byte("10")}, Count(10))
}

func TestMatchEncodesTokenThenPattern(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("MATCH"), []byte("user:*")}, Match("user:*"))
}

func TestByEncodesTokenThenPattern(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("BY"), []byte("weight_*")}, By("weight_*"))
}

func TestGetEncodesTokenThenPattern(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("GET"), []byte("data_*")}, Get("data_*"))
}

func TestAggregateEncodesTokenThenKeyword(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("AGGREGATE"), []byte("SUM")}, AggregateSum.Encode())
	assert.Equal(t, [][]byte{[]byte("AGGREGATE"), []byte("MIN")}, AggregateMin.Encode())
	assert.Equal(t, [][]byte{[]byte("AGGREGATE"), []byte("MAX")}, AggregateMax.Encode())
}

func TestStoreEncodesTokenThenKey(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("STORE"), []byte("dest")}, Store("dest"))
}

func TestStoreDistEncodesTokenThenKey(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte("STOREDIST"), []byte("dest")}, StoreDist("dest"))
}
