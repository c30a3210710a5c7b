package conf

type Bootstrap struct {
	Server *Server `json:"server"`
	Finder *Finder `json:"finder"`
}

type Server struct {
	Http *HTTP `json:"http"`
}

type HTTP struct {
	Addr    string `json:"addr"`
	Timeout string `json:"timeout"`
}

type Finder struct {
	Llm         *LLM         `json:"llm"`
	Search      *Search      `json:"search"`
	Log         *Log         `json:"log"`
	Concurrency *Concurrency `json:"concurrency"`
	Breaker     *Breaker     `json:"breaker"`
	Db          *DB          `json:"db"`
}

type LLM struct {
	BaseUrl     string   `json:"base_url"`
	ApiKey      string   `json:"api_key"`
	Model       string   `json:"model"`
	Temperature *float32 `json:"temperature"`
	MaxTokens   int32    `json:"max_tokens"`
	Timeout     int32    `json:"timeout"`
}

type Search struct {
	Provider   string   `json:"provider"`
	MaxResults int32    `json:"max_results"`
	Youtube    *YouTube `json:"youtube"`
	Tavily     *Tavily  `json:"tavily"`
	Searxng    *SearXNG `json:"searxng"`
}

type YouTube struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Tavily struct {
	ApiKey  string `json:"api_key"`
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type SearXNG struct {
	BaseUrl string `json:"base_url"`
	Timeout int32  `json:"timeout"`
}

type Log struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type Concurrency struct {
	Qps int32 `json:"qps"`
	Rpm int32 `json:"rpm"`
}

type Breaker struct {
	FailureThreshold int32 `json:"failure_threshold"`
	Timeout          int32 `json:"timeout"`
}

type DB struct {
	Host     string `json:"host"`
	Port     int32  `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}
