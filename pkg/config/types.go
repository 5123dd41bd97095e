package config

type TCPIngress struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type WebIngress struct {
	Host string `yaml:"host" json:"host"`
	// 0 disables the WebSocket ingress
	Port int `yaml:"port" json:"port"`
}

type IngressSettings struct {
	TCP TCPIngress `yaml:"tcp" json:"tcp"`
	Web WebIngress `yaml:"web" json:"web"`
}

type GameSettings struct {
	MaxPlayers   int `yaml:"maxPlayers" json:"maxPlayers"`
	HandSize     int `yaml:"handSize" json:"handSize"`
	WinningScore int `yaml:"winningScore" json:"winningScore"`
}

type RedisSettings struct {
	// Empty disables publishing events to Redis
	Address  string `yaml:"address" json:"address"`
	Password string `yaml:"password" json:"password"`
	DB       int    `yaml:"db" json:"db"`
	Prefix   string `yaml:"prefix" json:"prefix"`
}

type ServerSettings struct {
	Ingress           IngressSettings `yaml:"ingress" json:"ingress"`
	Game              GameSettings    `yaml:"game" json:"game"`
	MessagesPerSecond int             `yaml:"messagesPerSecond" json:"messagesPerSecond"`
	// Where to keep match history. Empty disables it.
	DBPath string        `yaml:"dbPath" json:"dbPath"`
	Redis  RedisSettings `yaml:"redis" json:"redis"`
}

type Config struct {
	Server ServerSettings `yaml:"server" json:"server"`
}
