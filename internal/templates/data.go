package templates

// FileData is shared by every generated file
type FileData struct {
	Header  string
	Package string
	Imports []ImportData
}

// VarData is a local variable holding one call result
type VarData struct {
	Name string
	Type string
}

// ClientData renders the implementation of a client interface
type ClientData struct {
	FileData
	Name        string
	Interface   string
	Constructor string
	Service     string
	Aspects     []string // Annotation lines copied from the interface
	Methods     []ClientMethodData
}

// ClientMethodData renders one client method. Args and Refs are complete
// []any expressions.
type ClientMethodData struct {
	Name      string
	Aspects   []string
	Params    string
	Results   string
	Vars      []VarData
	Context   string
	Operation string
	Args      string
	Refs      string
	Returns   string
}

// AspectData is one aspect listed in a proxy invocation. Params is the body
// of a map[string]string literal.
type AspectData struct {
	Kind   string
	Params string
}

// ProxyData renders the aspect proxy of a client implementation
type ProxyData struct {
	FileData
	Name              string
	Interface         string // Client interface the proxy is asserted against
	Service           string
	Target            string
	Embed             string // Target or *Target
	Constructor       string
	TargetConstructor string
	Params            string
	Args              string
	Returns           string
	ReturnsError      bool
	Methods           []ProxyMethodData
}

// ProxyMethodData renders one intercepted method
type ProxyMethodData struct {
	Name         string
	Params       string
	Results      string
	Operation    string
	Args         string
	Aspects      []AspectData
	Vars         []VarData
	Context      string
	ContextParam string
	Assign       string
	Call         string
	Returns      string
}

// ProviderData is one entry of a module
type ProviderData struct {
	Name string
	Ref  string // Constructor expression, package-qualified when imported
	Tags []string
}

// ModuleData renders a package's module
type ModuleData struct {
	FileData
	Name      string
	Providers []ProviderData
}
