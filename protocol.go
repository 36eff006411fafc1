package structreader

import (
	"www.velocidex.com/golang/vfilter"
)

// Records participate in the vfilter associative protocol so that
// profile lambdas can traverse nested results (x=>x.hdr.len).
type RecordAssociative struct{}

func (self RecordAssociative) Applicable(a vfilter.Any, b vfilter.Any) bool {
	switch a.(type) {
	case Record, *Record:
		_, ok := b.(string)
		if ok {
			return true
		}
	}
	return false
}

func (self RecordAssociative) Associative(scope vfilter.Scope,
	a vfilter.Any, b vfilter.Any) (vfilter.Any, bool) {
	lhs, ok := a.(*Record)
	if !ok {
		return vfilter.Null{}, false
	}

	rhs, ok := b.(string)
	if !ok {
		return vfilter.Null{}, false
	}

	value, pres := lhs.Get(rhs)
	if !pres {
		return vfilter.Null{}, false
	}
	return value, true
}

func (self RecordAssociative) GetMembers(scope vfilter.Scope, a vfilter.Any) []string {
	lhs, ok := a.(*Record)
	if !ok {
		return nil
	}
	return lhs.Names()
}
