package wasip2

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/tetratelabs/wazero"

	"github.com/foxxorcat/wazero-clampclock/clamp"
	"github.com/foxxorcat/wazero-clampclock/config"
	"github.com/foxxorcat/wazero-clampclock/internal/metrics"
	"github.com/foxxorcat/wazero-clampclock/manager/clocks"
)

// Implementation 是所有 WASI 模块必须实现的接口。
type Implementation interface {
	// Name 返回模块的名称，例如 "wasi:clocks/wall-clock"。
	Name() string
	// Versions 返回此实现兼容的 WIT 版本列表，例如 ["0.2.0", "0.2.1"]。
	Versions() []string
	// Instantiate 将模块的函数导出到 wazero 运行时。
	Instantiate(context.Context, *Host, wazero.HostModuleBuilder) error
}

// Host 是所有 WASI 实现的容器，并持有 guest 可见时钟的策略。
type Host struct {
	clockManager *clocks.Manager
	metrics      *metrics.Metrics
	logger       *logrus.Entry

	defaultConfig clamp.Config
	guestConfigs  map[string]clamp.Config
	cacheSize     int
	registerer    prometheus.Registerer

	implementations []Implementation
}

// ModuleOption 是用于配置 Host 的选项函数。
type ModuleOption func(*Host)

// WithDefault 设置未单独配置的 guest 使用的策略。
func WithDefault(cfg clamp.Config) ModuleOption {
	return func(h *Host) {
		h.defaultConfig = cfg
	}
}

// WithGuest 为名为 name 的 guest 模块设置独立策略。
func WithGuest(name string, cfg clamp.Config) ModuleOption {
	return func(h *Host) {
		h.guestConfigs[name] = cfg
	}
}

// WithCacheSize 限制同时保存的 guest 策略数量。
func WithCacheSize(n int) ModuleOption {
	return func(h *Host) {
		h.cacheSize = n
	}
}

// WithRegisterer 将时钟读取计数注册到 reg。
func WithRegisterer(reg prometheus.Registerer) ModuleOption {
	return func(h *Host) {
		h.registerer = reg
	}
}

func WithLogger(l *logrus.Entry) ModuleOption {
	return func(h *Host) {
		h.logger = l
	}
}

// FromFile 应用配置文件中的全部策略。
func FromFile(f *config.File) ModuleOption {
	return func(h *Host) {
		h.defaultConfig = f.Config
		h.cacheSize = f.CacheSize
		for name, cfg := range f.Guests {
			h.guestConfigs[name] = cfg
		}
	}
}

// NewHost 创建一个新的 Host 实例，并应用所有提供的模块选项。
// 无效的策略会被记录并忽略。
func NewHost(opts ...ModuleOption) *Host {
	h := &Host{
		logger:        logrus.WithField("component", "wasip2"),
		defaultConfig: clamp.DefaultConfig(),
		guestConfigs:  make(map[string]clamp.Config),
		cacheSize:     config.DefaultCacheSize,
	}

	for _, opt := range opts {
		opt(h)
	}

	if err := h.defaultConfig.Validate(); err != nil {
		h.logger.WithError(err).Warnf("ignoring default clock policy %+v", h.defaultConfig)
		h.defaultConfig = clamp.DefaultConfig()
	}
	if h.cacheSize <= 0 {
		h.logger.Warnf("ignoring clock policy cache size %d", h.cacheSize)
		h.cacheSize = config.DefaultCacheSize
	}
	if len(h.guestConfigs) > h.cacheSize {
		h.logger.Warnf("%d guest clock policies exceed cache size %d, the oldest fall back to the default",
			len(h.guestConfigs), h.cacheSize)
	}

	// cacheSize 已确保为正数，NewManager 不会失败。
	h.clockManager, _ = clocks.NewManager(clamp.NewClamper(h.defaultConfig), h.cacheSize)
	for name, cfg := range h.guestConfigs {
		if err := cfg.Validate(); err != nil {
			h.logger.WithError(err).Warnf("ignoring clock policy for guest %q", name)
			continue
		}
		h.clockManager.Set(name, cfg)
	}
	m, err := metrics.New(h.registerer)
	if err != nil {
		h.logger.WithError(err).Warn("clock metrics are not exported")
	}
	h.metrics = m

	return h
}

func (h *Host) AddImplementation(impl Implementation) {
	h.implementations = append(h.implementations, impl)
}

// Instantiate 将所有已配置的模块实例化到 wazero 运行时。
func (h *Host) Instantiate(ctx context.Context, r wazero.Runtime) error {
	for _, impl := range h.implementations {
		for _, version := range impl.Versions() {
			moduleName := impl.Name() + "@" + version
			builder := r.NewHostModuleBuilder(moduleName)
			if err := impl.Instantiate(ctx, h, builder); err != nil {
				return err
			}

			if _, err := builder.Instantiate(ctx); err != nil {
				return err
			}
			h.logger.Debugf("instantiated host module %s", moduleName)
		}
	}
	return nil
}

func (h *Host) ClockManager() *clocks.Manager {
	return h.clockManager
}

func (h *Host) Metrics() *metrics.Metrics {
	return h.metrics
}

func (h *Host) Logger() *logrus.Entry {
	return h.logger
}
