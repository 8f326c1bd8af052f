package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken       string
		StargazersApiUrl  string
		StarredApiUrl     string
		PerPage           int
		RequestsPerSecond int
		ThrottleDelay     int
		RateLimitResetMin int
	}

	// Neighbour chứa cấu hình cho engine tìm kiếm neighbour repository
	Neighbour struct {
		MaxConcurrentFetches int
		MaxPagesPerRelation  int
		RetryMaxAttempts     int
		RetryBaseDelayMs     int
		RetryMaxDelayMs      int
		RequestDeadlineSec   int
	}

	Api struct {
		Port          int
		ApiKeyTtlDays int
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
	}

	KafkaProducer struct {
		TopicDiscovery string
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Neighbour Neighbour
	Api       Api
	Kafka     Kafka
}
