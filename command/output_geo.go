package command

import "github.com/wegjgwioj/goredis/resp"

// GeoPosition is one GEOPOS reply element: a (longitude, latitude) pair.
type GeoPosition struct {
	Longitude float64
	Latitude  float64
}

// Geo decodes a GEOPOS reply: an array whose elements are either a
// 2-element [longitude, latitude] bulk-string pair, or a null array for
// a member with no known position.
func Geo(v resp.Value) ([]*GeoPosition, error) {
	if v.Type != resp.TypeArray {
		return nil, protocolErrorf("GEOPOS: expected array, got %s", v.Type)
	}
	if v.IsNull {
		return []*GeoPosition{}, nil
	}
	out := make([]*GeoPosition, 0, len(v.Items))
	for _, item := range v.Items {
		if item.Type == resp.TypeArray && item.IsNull {
			out = append(out, nil)
			continue
		}
		if item.Type != resp.TypeArray || len(item.Items) != 2 {
			return nil, protocolErrorf("GEOPOS: expected 2-element position entry")
		}
		lon, err := DoubleReply(item.Items[0])
		if err != nil {
			return nil, err
		}
		lat, err := DoubleReply(item.Items[1])
		if err != nil {
			return nil, err
		}
		out = append(out, &GeoPosition{Longitude: lon, Latitude: lat})
	}
	return out, nil
}

// GeoRadiusResult is one GEORADIUS/GEOSEARCH reply element. Dist, Hash,
// and Coord are populated only when the matching WITHDIST/WITHHASH/
// WITHCOORD option was requested on the query that produced the reply.
type GeoRadiusResult struct {
	Member string
	Dist   *float64
	Hash   *int64
	Coord  *GeoPosition
}

// GeoRadiusOptions mirrors which WITH* options were sent, since the
// reply shape (bare member name vs. nested per-member array) depends on
// them and cannot be inferred from the reply alone.
type GeoRadiusOptions struct {
	WithCoord bool
	WithDist  bool
	WithHash  bool
}

// GeoRadius decodes a GEORADIUS/GEORADIUSBYMEMBER/GEOSEARCH reply. With
// no WITH* option the reply is a flat array of bare member names; with
// any combination requested, each element is itself an array ordered
// member, [dist], [hash], [longitude, latitude].
func GeoRadius(opts GeoRadiusOptions) Output[[]GeoRadiusResult] {
	return func(v resp.Value) ([]GeoRadiusResult, error) {
		if v.Type != resp.TypeArray {
			return nil, protocolErrorf("GEORADIUS: expected array, got %s", v.Type)
		}
		if v.IsNull {
			return []GeoRadiusResult{}, nil
		}
		out := make([]GeoRadiusResult, 0, len(v.Items))
		for _, item := range v.Items {
			if !opts.WithCoord && !opts.WithDist && !opts.WithHash {
				member, err := MultiString(item)
				if err != nil {
					return nil, err
				}
				out = append(out, GeoRadiusResult{Member: member})
				continue
			}
			if item.Type != resp.TypeArray {
				return nil, protocolErrorf("GEORADIUS: expected per-member array, got %s", item.Type)
			}
			idx := 0
			next := func() (resp.Value, error) {
				if idx >= len(item.Items) {
					return resp.Value{}, protocolErrorf("GEORADIUS: per-member array too short")
				}
				v := item.Items[idx]
				idx++
				return v, nil
			}
			nameVal, err := next()
			if err != nil {
				return nil, err
			}
			member, err := MultiString(nameVal)
			if err != nil {
				return nil, err
			}
			result := GeoRadiusResult{Member: member}
			if opts.WithDist {
				distVal, err := next()
				if err != nil {
					return nil, err
				}
				d, err := DoubleReply(distVal)
				if err != nil {
					return nil, err
				}
				result.Dist = &d
			}
			if opts.WithHash {
				hashVal, err := next()
				if err != nil {
					return nil, err
				}
				h, err := IntegerReply(hashVal)
				if err != nil {
					return nil, err
				}
				result.Hash = &h
			}
			if opts.WithCoord {
				coordVal, err := next()
				if err != nil {
					return nil, err
				}
				if coordVal.Type != resp.TypeArray || len(coordVal.Items) != 2 {
					return nil, protocolErrorf("GEORADIUS: expected 2-element coordinate entry")
				}
				lon, err := DoubleReply(coordVal.Items[0])
				if err != nil {
					return nil, err
				}
				lat, err := DoubleReply(coordVal.Items[1])
				if err != nil {
					return nil, err
				}
				result.Coord = &GeoPosition{Longitude: lon, Latitude: lat}
			}
			out = append(out, result)
		}
		return out, nil
	}
}
