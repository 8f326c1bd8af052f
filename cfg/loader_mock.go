package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "star-neighbours",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "star_neighbours",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken:       "",
			StargazersApiUrl:  "https://api.github.com/repos/{user}/{repo}/stargazers",
			StarredApiUrl:     "https://api.github.com/users/{user}/starred",
			PerPage:           100,
			RequestsPerSecond: 10,
			ThrottleDelay:     200,
			RateLimitResetMin: 60,
		},

		// Neighbour engine
		Neighbour: Neighbour{
			MaxConcurrentFetches: 10,
			MaxPagesPerRelation:  10,
			RetryMaxAttempts:     3,
			RetryBaseDelayMs:     500,
			RetryMaxDelayMs:      10000,
			RequestDeadlineSec:   60,
		},

		// Api
		Api: Api{
			Port:          8080,
			ApiKeyTtlDays: 90,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
			Producer: KafkaProducer{
				TopicDiscovery: "star_neighbours.discoveries",
			},
		},
	}, nil
}
