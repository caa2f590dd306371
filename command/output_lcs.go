package command

import "github.com/wegjgwioj/goredis/resp"

// LcsRange is an inclusive [Start, End] index range into one of LCS's
// two input keys.
type LcsRange struct {
	Start int64
	End   int64
}

// LcsMatch is one matched substring range reported by LCS IDX: its
// range within each key, and (only under WITHMATCHLEN) the substring's
// length.
type LcsMatch struct {
	A   LcsRange
	B   LcsRange
	Len *int64
}

// LcsMatches is the LCS IDX reply: the list of matches (longest first,
// as the server orders them) plus the overall LCS length.
type LcsMatches struct {
	Matches []LcsMatch
	Len     int64
}

// Lcs decodes the LCS IDX reply: a flat ["matches", matchArray, "len",
// totalLen] array. Each matchArray element is [[a1,a2],[b1,b2]], or
// [[a1,a2],[b1,b2],matchLen] when WITHMATCHLEN was requested.
//
// LCS's plain-string and LEN-only reply forms are ordinary bulk string
// and integer replies respectively, decoded directly with MultiString
// and IntegerReply; only the IDX shape needs a dedicated decoder.
func Lcs(v resp.Value) (LcsMatches, error) {
	if v.Type != resp.TypeArray || len(v.Items) != 4 {
		return LcsMatches{}, protocolErrorf("LCS: expected 4-element [matches, ..., len, ...] array")
	}
	if key, err := MultiString(v.Items[0]); err != nil || key != "matches" {
		return LcsMatches{}, protocolErrorf("LCS: expected leading \"matches\" field")
	}
	matchesVal := v.Items[1]
	if matchesVal.Type != resp.TypeArray {
		return LcsMatches{}, protocolErrorf("LCS: expected matches array")
	}
	if key, err := MultiString(v.Items[2]); err != nil || key != "len" {
		return LcsMatches{}, protocolErrorf("LCS: expected trailing \"len\" field")
	}
	total, err := IntegerReply(v.Items[3])
	if err != nil {
		return LcsMatches{}, err
	}

	out := LcsMatches{Len: total, Matches: make([]LcsMatch, 0, len(matchesVal.Items))}
	for _, m := range matchesVal.Items {
		if m.Type != resp.TypeArray || len(m.Items) < 2 {
			return LcsMatches{}, protocolErrorf("LCS: malformed match entry")
		}
		a, err := lcsRange(m.Items[0])
		if err != nil {
			return LcsMatches{}, err
		}
		b, err := lcsRange(m.Items[1])
		if err != nil {
			return LcsMatches{}, err
		}
		match := LcsMatch{A: a, B: b}
		if len(m.Items) >= 3 {
			l, err := IntegerReply(m.Items[2])
			if err != nil {
				return LcsMatches{}, err
			}
			match.Len = &l
		}
		out.Matches = append(out.Matches, match)
	}
	return out, nil
}

func lcsRange(v resp.Value) (LcsRange, error) {
	if v.Type != resp.TypeArray || len(v.Items) != 2 {
		return LcsRange{}, protocolErrorf("LCS: expected 2-element range entry")
	}
	start, err := IntegerReply(v.Items[0])
	if err != nil {
		return LcsRange{}, err
	}
	end, err := IntegerReply(v.Items[1])
	if err != nil {
		return LcsRange{}, err
	}
	return LcsRange{Start: start, End: end}, nil
}
