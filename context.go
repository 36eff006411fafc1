package structreader

// A frame holds the values produced so far at one nesting level.
// Value index i always corresponds to program position i - anonymous
// opcodes occupy their slot with a nil placeholder.
type frame struct {
	values []interface{}
}

// Context is the per parse evaluation state. A fresh context is
// created for every top level ParseStruct call and discarded
// afterwards, so no state can leak between independent parses.
// Compiled programs may be shared between goroutines, contexts may
// not.
type Context struct {
	frames      []*frame
	return_dict bool
}

func NewContext(return_dict bool) *Context {
	result := &Context{return_dict: return_dict}
	result.push()
	return result
}

func (self *Context) push() *frame {
	result := &frame{}
	self.frames = append(self.frames, result)
	return result
}

func (self *Context) pop() {
	self.frames = self.frames[:len(self.frames)-1]
}

func (self *Context) current() *frame {
	return self.frames[len(self.frames)-1]
}
