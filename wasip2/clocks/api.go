package wasi_clocks

import (
	"github.com/tetratelabs/wazero"

	"github.com/foxxorcat/wazero-clampclock/wasip2"
	v0_2 "github.com/foxxorcat/wazero-clampclock/wasip2/clocks/v0_2"
)

// Module 返回一个配置好的 wasi:clocks 模块选项。
// guest 读取的时间按 Host 中该 guest 的策略降低精度并加入抖动。
func Module(version string) wasip2.ModuleOption {
	return func(h *wasip2.Host) {
		var monotonicClockImpl, wallClockImpl wasip2.Implementation

		switch version {
		case "0.2.0", "0.2.1", "0.2.2", "0.2.3", "0.2.4", "0.2.5":
			monotonicClockImpl = v0_2.NewMonotonicClock()
			wallClockImpl = v0_2.NewWallClock()
		default:
			return
		}
		h.AddImplementation(monotonicClockImpl)
		h.AddImplementation(wallClockImpl)
	}
}

// ModuleConfig 为 WASI preview1 guest 安装同样的时钟策略。
// name 用于在 Host 中查找策略，并作为模块名写入配置。
// 每次读取都会重新查找策略，之后的 Set 或缓存淘汰与 wasi:clocks 保持一致；
// 上报给 wazero 的精度只在此时取一次。
func ModuleConfig(h *wasip2.Host, cfg wazero.ModuleConfig, name string) wazero.ModuleConfig {
	policies := h.ClockManager()
	res := v0_2.ClockResolution(policies.For(name))
	return cfg.WithName(name).
		WithWalltime(v0_2.NewWalltime(policies, h.Metrics(), name), res).
		WithNanotime(v0_2.NewNanotime(policies, h.Metrics(), name), res)
}
