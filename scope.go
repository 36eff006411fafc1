package structreader

import "www.velocidex.com/golang/vfilter"

func MakeScope() vfilter.Scope {
	result := vfilter.NewScope()
	result.AddProtocolImpl(&RecordAssociative{})

	return result
}
