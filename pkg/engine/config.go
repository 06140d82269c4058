package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/lintang-b-s/gridnav/pkg/engine/search"
	"github.com/lintang-b-s/gridnav/pkg/gridmap"
	"github.com/lintang-b-s/gridnav/pkg/util"
	"github.com/spf13/viper"
)

const (
	SEARCH_POLICY          = "SEARCH_POLICY"
	SEARCH_HEURISTIC       = "SEARCH_HEURISTIC"
	SEARCH_TIME_BUDGET     = "SEARCH_TIME_BUDGET"
	SEARCH_HEAP_ARITY      = "SEARCH_HEAP_ARITY"
	SEARCH_BIT_SCAN        = "SEARCH_BIT_SCAN"
	ENGINE_PATH_CACHE_SIZE = "ENGINE_PATH_CACHE_SIZE"
	ENGINE_NUM_WORKERS     = "ENGINE_NUM_WORKERS"
	ENGINE_JUMP_TABLE_PATH = "ENGINE_JUMP_TABLE_PATH"
	MAP_KIND               = "MAP_KIND"
)

type Config struct {
	Policy     string        `validate:"required,oneof=astar plain jps jps_offline"`
	Heuristic  string        `validate:"required,oneof=octile euclidean zero"`
	TimeBudget time.Duration `validate:"min=0s"`
	HeapArity  int           `validate:"min=2,max=16"`
	BitScan    bool
	// PathCacheSize is the number of solved queries kept, 0 disables the cache.
	PathCacheSize int    `validate:"min=0"`
	NumWorkers    int    `validate:"min=1,max=1024"`
	MapKind       string `validate:"required,oneof=bitpacked uniform weighted rle"`
	// JumpTablePath is read by jps_offline when it exists and written after a precompute otherwise.
	JumpTablePath string
}

func DefaultConfig() Config {
	return Config{
		Policy:        "jps",
		Heuristic:     "octile",
		TimeBudget:    0,
		HeapArity:     2,
		BitScan:       true,
		PathCacheSize: 0,
		NumWorkers:    4,
		MapKind:       "bitpacked",
	}
}

func setDefaults() {
	def := DefaultConfig()
	viper.SetDefault(SEARCH_POLICY, def.Policy)
	viper.SetDefault(SEARCH_HEURISTIC, def.Heuristic)
	viper.SetDefault(SEARCH_TIME_BUDGET, "0s")
	viper.SetDefault(SEARCH_HEAP_ARITY, def.HeapArity)
	viper.SetDefault(SEARCH_BIT_SCAN, def.BitScan)
	viper.SetDefault(ENGINE_PATH_CACHE_SIZE, def.PathCacheSize)
	viper.SetDefault(ENGINE_NUM_WORKERS, def.NumWorkers)
	viper.SetDefault(ENGINE_JUMP_TABLE_PATH, "")
	viper.SetDefault(MAP_KIND, def.MapKind)
}

// LoadConfig reads the engine config from viper (config file and environment) and validates it.
func LoadConfig() (Config, error) {
	setDefaults()
	viper.AutomaticEnv()

	cfg := Config{
		Policy:        strings.ToLower(viper.GetString(SEARCH_POLICY)),
		Heuristic:     strings.ToLower(viper.GetString(SEARCH_HEURISTIC)),
		TimeBudget:    viper.GetDuration(SEARCH_TIME_BUDGET),
		HeapArity:     viper.GetInt(SEARCH_HEAP_ARITY),
		BitScan:       viper.GetBool(SEARCH_BIT_SCAN),
		PathCacheSize: viper.GetInt(ENGINE_PATH_CACHE_SIZE),
		NumWorkers:    viper.GetInt(ENGINE_NUM_WORKERS),
		JumpTablePath: viper.GetString(ENGINE_JUMP_TABLE_PATH),
		MapKind:       strings.ToLower(viper.GetString(MAP_KIND)),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		return util.WrapErrorf(nil, util.ErrInvalidConfig, "validation error: %v", vvString)
	}
	return nil
}

func translateError(err error, trans ut.Translator) []error {
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	errs := make([]error, 0, len(validatorErrs))
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}

// SearchConfig converts the validated string settings into search settings.
func (c Config) SearchConfig() (search.Config, error) {
	policy, err := search.ParsePolicyKind(c.Policy)
	if err != nil {
		return search.Config{}, err
	}
	heuristic, err := search.ParseHeuristicKind(c.Heuristic)
	if err != nil {
		return search.Config{}, err
	}
	return search.Config{
		Policy:     policy,
		Heuristic:  heuristic,
		TimeBudget: c.TimeBudget,
		HeapArity:  c.HeapArity,
		BitScan:    c.BitScan,
	}, nil
}

func (c Config) GetMapKind() (gridmap.Kind, error) {
	kind, err := gridmap.ParseKind(c.MapKind)
	if err != nil {
		return 0, util.WrapErrorf(err, util.ErrInvalidConfig, "map kind")
	}
	return kind, nil
}
