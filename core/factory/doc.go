// Package factory provides the generic registry used to build pluggable
// modules (recorders, metrics sinks) from configuration. A module is a type
// name plus a map of raw settings; factories decode the settings with Decode
// and return the concrete implementation.
//
//	reg := factory.NewRegistry[io.Writer]()
//	reg.Register("file", func(conf map[string]any) (io.Writer, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return os.Create(c.Path)
//	})
//	w, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "out.txt"}})
package factory
