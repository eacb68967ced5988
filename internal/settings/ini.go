package settings

import (
	"fmt"

	"gopkg.in/ini.v1"
)

var iniOptions = ini.LoadOptions{
	AllowShadows:            true,
	PreserveSurroundedQuote: true,
	IgnoreInlineComment:     true,
}

func parseINI(data []byte) (*Settings, error) {
	f, err := ini.LoadSources(iniOptions, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	s := New()
	for _, sec := range f.Sections() {
		for _, key := range sec.Keys() {
			for _, v := range key.ValueWithShadows() {
				s.Add(sec.Name(), key.Name(), v)
			}
		}
	}
	return s, nil
}
