package cmd

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	log2 "log"
	"net/http"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/julienschmidt/httprouter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/datastax/query-plan-apis/allowlist"
	"github.com/datastax/query-plan-apis/auth"
	"github.com/datastax/query-plan-apis/config"
	"github.com/datastax/query-plan-apis/db"
	"github.com/datastax/query-plan-apis/endpoint"
	"github.com/datastax/query-plan-apis/log"
	"github.com/datastax/query-plan-apis/rest"
)

const defaultRESTPath = "/api"

// Environment variables prefixed with "QUERY_PLAN_" can override settings e.g. "QUERY_PLAN_DATABASE_URL"
const envVarPrefix = "query_plan"

var cfgFile string
var logger log.Logger
var cfg *endpoint.DataEndpointConfig

var serverCmd = &cobra.Command{
	Use:   os.Args[0] + " --database-url [URL] --config [FILE] [OPTIONS]",
	Short: "Whitelisted REST query endpoint for relational databases",
	Args: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("database-url") == "" {
			return errors.New("database url is required")
		}

		switch viper.GetString("driver") {
		case db.DriverPostgres, db.DriverSqlite:
		default:
			return fmt.Errorf("unsupported driver '%s', options: %s, %s",
				viper.GetString("driver"), db.DriverPostgres, db.DriverSqlite)
		}

		if viper.GetBool("watch-config") && cfgFile == "" {
			return errors.New("watching the configuration requires a config file")
		}

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		endpoint := createEndpoint()
		defer endpoint.Close()

		if viper.GetBool("watch-config") {
			watchConfig(endpoint)
		}

		router := createRouter()
		rest.AddRoutes(router, endpoint.RoutesRest(viper.GetString("path")))
		listenAndServe(router, viper.GetInt("port"))
	},
}

// Execute starts the REST endpoint
func Execute() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		log2.Fatalf("unable to initialize logger: %v", err)
	}

	logger = log.NewZapLogger(zapLogger)

	flags := serverCmd.PersistentFlags()

	// General endpoint flags
	flags.StringVarP(&cfgFile, "config", "c", "", "config file declaring the resources")
	flags.StringP("database-url", "d", "", "url or data source name used to connect to the database")
	flags.String("driver", db.DriverPostgres, "database driver. options: postgres,sqlite")
	flags.Bool("request-logging", false, "enable request logging")
	flags.String("access-control-allow-origin", "", "Access-Control-Allow-Origin header value")
	flags.Bool("watch-config", false, "reload the resources when the config file changes")

	// REST specific flags
	flags.Int("port", 8080, "REST endpoint port")
	flags.String("path", defaultRESTPath, "REST endpoint path")
	flags.StringSlice("operators", config.OperatorNames(),
		"list of enabled filter operators. options: "+strings.Join(config.OperatorNames(), ","))
	flags.Int("default-per-page", allowlist.DefaultPerPage, "page size used when a resource does not declare one")
	flags.Bool("use-user-or-role-auth", false, "require an identity for resources scoped to their owner")
	flags.String("identity-header", "", "request header carrying the user or role of the caller")

	flags.VisitAll(func(flag *pflag.Flag) {
		if flag.Name != "config" {
			viper.BindPFlag(flag.Name, flags.Lookup(flag.Name))
		}
	})

	cobra.OnInitialize(initialize)

	viper.SetEnvPrefix(envVarPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := serverCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createEndpoint() *endpoint.DataEndpoint {
	cfg = endpoint.NewEndpointConfigWithLogger(logger, viper.GetString("driver"), viper.GetString("database-url"))

	names := getStringSlice("operators")
	operators, err := config.Operators(names...)
	if err != nil {
		logger.Fatal("invalid operator", "operators", names, "error", err)
	}

	cfg.
		WithOperators(operators).
		WithDefaultPerPage(viper.GetInt("default-per-page")).
		WithUseUserOrRoleAuth(viper.GetBool("use-user-or-role-auth"))

	defs, err := config.DecodeResources(viper.Get("resources"))
	if err != nil {
		logger.Fatal("unable to read resources", "error", err)
	}
	if len(defs) == 0 {
		logger.Warn("no resources declared, every request will be answered with 404")
	}

	endpoint, err := cfg.NewEndpoint(context.Background(), defs)
	if err != nil {
		logger.Fatal("unable create new endpoint",
			"error", err)
	}

	return endpoint
}

func watchConfig(endpoint *endpoint.DataEndpoint) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		logger.Info("config file changed", "file", e.Name, "op", e.Op.String())
		defs, err := config.DecodeResources(viper.Get("resources"))
		if err != nil {
			logger.Error("unable to read resources, keeping the current ones", "error", err)
			return
		}
		// errors are logged by the endpoint, the current resources keep being served
		_ = endpoint.Reload(defs)
	})
	viper.WatchConfig()
}

func maybeAddRequestLogging(handler http.Handler) http.Handler {
	if viper.GetBool("request-logging") {
		handler = log.NewLoggingHandler(handler, logger)
	}
	return handler
}

func maybeAddIdentity(handler http.Handler) http.Handler {
	if header := viper.GetString("identity-header"); header != "" {
		return auth.NewHeaderHandler(handler, header)
	}
	return handler
}

func maybeAddCORS(handler http.Handler) http.Handler {
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", value)
			handler.ServeHTTP(w, r)
		})
	}
	return handler
}

func initialize() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err == nil {
			logger.Info("using config file",
				"file", viper.ConfigFileUsed())
		} else {
			logger.Fatal("unable to read config file",
				"file", cfgFile,
				"error", err)
		}
	}
}

func createRouter() *httprouter.Router {
	router := rest.ApiRouter(nil)
	if value := viper.GetString("access-control-allow-origin"); value != "" {
		router.GlobalOPTIONS = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Access-Control-Request-Method") != "" {
				header := w.Header()
				header.Set("Access-Control-Allow-Method", r.Header.Get("Access-Control-Request-Method"))
				header.Set("Access-Control-Allow-Headers", r.Header.Get("Access-Control-Request-Headers"))
				header.Set("Access-Control-Allow-Origin", value)
			}

			w.WriteHeader(http.StatusNoContent)
		})
	}
	return router
}

func listenAndServe(handler http.Handler, port int) {
	logger.Info("server listening",
		"port", port,
		"path", viper.GetString("path"))
	handler = maybeAddCORS(maybeAddRequestLogging(maybeAddIdentity(handler)))
	err := http.ListenAndServe(fmt.Sprintf(":%d", port), handler)
	if err != nil {
		logger.Fatal("unable to start server",
			"port", port,
			"error", err)
	}
}

func getStringSlice(key string) []string {
	value := viper.GetStringSlice(key)
	slice, err := toStringSlice(value)
	if err != nil {
		logger.Fatal("invalid string slice value for setting",
			"error", err,
			"key", key,
			"value", value)
	}
	return slice
}

func toStringSlice(slice []string) ([]string, error) {
	result := make([]string, 0)
	for _, entry := range slice {
		stringReader := strings.NewReader(entry)
		csvReader := csv.NewReader(stringReader)
		split, err := csvReader.Read()
		if err != nil {
			return nil, err
		}
		for _, part := range split {
			if part != "" { // Don't add empty values
				result = append(result, part)
			}
		}
	}
	return result, nil
}
