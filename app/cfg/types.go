package cfg

type Cfg struct {
	// Storage configuration
	DBPath string

	// Application configuration
	Port              string
	APIAccessKey      string
	WorkerCount       int
	SchedulerInterval int
	TaxonomyPath      string

	// AI configuration
	OpenAIAPIKey         string
	OpenAIBaseURL        string
	Model                string
	MaxTokens            int
	TokensPerProduct     int
	Temperature          float64
	MaxProductsPerBatch  int
	MaxRequestsPerMinute int
	BatchDelay           int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
