package mq_client

type Exchange struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type Queue struct {
	Name    string `yaml:"name"`
	Durable bool   `yaml:"durable"`
}

type Binding struct {
	Queue      string `yaml:"queue"`
	CleanStart bool   `yaml:"clean_start"`
	Exchange   string `yaml:"exchange"`
}

type Channel struct {
	Prefetch int `yaml:"prefetch"`
}

type MQClientConfig struct {
	Exchange struct {
		Trade     Exchange `yaml:"trade"`
		Orderbook Exchange `yaml:"orderbook"`
		Events    Exchange `yaml:"events"`
		Matching  Exchange `yaml:"matching"`
	}
	Queue struct {
		Matching        Queue `yaml:"matching"`
		NewTrade        Queue `yaml:"new_trade"`
		DepthCache      Queue `yaml:"depth_cache"`
		InfluxWriter    Queue `yaml:"influx_writer"`
		EventsProcessor Queue `yaml:"events_processor"`
	}
	Binding struct {
		Matching        Binding `yaml:"matching"`
		NewTrade        Binding `yaml:"new_trade"`
		DepthCache      Binding `yaml:"depth_cache"`
		InfluxWriter    Binding `yaml:"influx_writer"`
		EventsProcessor Binding `yaml:"events_processor"`
	}
	Channel struct {
		Matching   Channel `yaml:"matching"`
		DepthCache Channel `yaml:"depth_cache"`
	}
}
