package signal

import (
	"fmt"

	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
)

// Color 信号灯头颜色，沿用城市地图协议的灯态枚举
// 说明：UNAVAILABLE用作保护左转箭头灯头的"熄灭"状态
type Color = mapv2.LightState

const (
	ColorGreen  = mapv2.LightState_LIGHT_STATE_GREEN
	ColorYellow = mapv2.LightState_LIGHT_STATE_YELLOW
	ColorRed    = mapv2.LightState_LIGHT_STATE_RED
	ColorOff    = mapv2.LightState_LIGHT_STATE_UNAVAILABLE
)

// Head 信号灯头索引
// 说明：每条通行轴有直行灯头和可选的保护左转箭头灯头
type Head int32

const (
	HeadNSThrough Head = iota // 南北直行
	HeadNSLeft                // 南北保护左转箭头
	HeadEWThrough             // 东西直行
	HeadEWLeft                // 东西保护左转箭头

	NumHeads = 4
)

// Phase 信控相位
// 功能：一个命名的信号周期区间，具有固定时长与各灯头的颜色指派
type Phase struct {
	Name     string          // 相位名称
	Duration float64         // 相位时长（秒）
	States   [NumHeads]Color // 各灯头颜色
}

// Program 信控程序
// 功能：按顺序循环执行的相位序列，无终止状态
type Program struct {
	Phases []Phase
}

// Validate 校验信控程序
// 功能：检查相位序列非空、时长为正、颜色取值合法
// 返回：校验错误，nil表示程序合法
func (p *Program) Validate() error {
	if p == nil || len(p.Phases) == 0 {
		return fmt.Errorf("signal program has no phases")
	}
	for i, phase := range p.Phases {
		if phase.Duration <= 0 {
			return fmt.Errorf("phase %d (%s) has non-positive duration %f", i, phase.Name, phase.Duration)
		}
		for h, state := range phase.States {
			switch state {
			case ColorGreen, ColorYellow, ColorRed, ColorOff:
			default:
				return fmt.Errorf("phase %d (%s) head %d has bad state %v", i, phase.Name, h, state)
			}
		}
	}
	return nil
}

// CycleLength 获取完整信号周期长度
// 返回：所有相位时长之和（秒）
func (p *Program) CycleLength() float64 {
	total := .0
	for _, phase := range p.Phases {
		total += phase.Duration
	}
	return total
}

// TwoPhaseProgram 构建两相位信控程序
// 功能：南北绿->南北黄->东西绿->东西黄循环，对向轴在此期间保持红灯
// 参数：green-绿灯时长（秒），yellow-黄灯时长（秒）
// 说明：保护左转箭头灯头全程熄灭
func TwoPhaseProgram(green, yellow float64) *Program {
	return &Program{Phases: []Phase{
		{Name: "ns_green", Duration: green,
			States: [NumHeads]Color{ColorGreen, ColorOff, ColorRed, ColorOff}},
		{Name: "ns_yellow", Duration: yellow,
			States: [NumHeads]Color{ColorYellow, ColorOff, ColorRed, ColorOff}},
		{Name: "ew_green", Duration: green,
			States: [NumHeads]Color{ColorRed, ColorOff, ColorGreen, ColorOff}},
		{Name: "ew_yellow", Duration: yellow,
			States: [NumHeads]Color{ColorRed, ColorOff, ColorYellow, ColorOff}},
	}}
}

// ProtectedLeftProgram 构建带保护左转的多相位信控程序
// 功能：每轴先保护左转、再直行、黄灯过渡，轴间插入全红清空相位
// 参数：leftGreen-左转绿时长，green-直行绿时长，yellow-黄灯时长，allRed-全红清空时长（秒）
func ProtectedLeftProgram(leftGreen, green, yellow, allRed float64) *Program {
	return &Program{Phases: []Phase{
		{Name: "ns_left", Duration: leftGreen,
			States: [NumHeads]Color{ColorRed, ColorGreen, ColorRed, ColorRed}},
		{Name: "ns_through", Duration: green,
			States: [NumHeads]Color{ColorGreen, ColorRed, ColorRed, ColorRed}},
		{Name: "ns_yellow", Duration: yellow,
			States: [NumHeads]Color{ColorYellow, ColorRed, ColorRed, ColorRed}},
		{Name: "ns_clear", Duration: allRed,
			States: [NumHeads]Color{ColorRed, ColorRed, ColorRed, ColorRed}},
		{Name: "ew_left", Duration: leftGreen,
			States: [NumHeads]Color{ColorRed, ColorRed, ColorRed, ColorGreen}},
		{Name: "ew_through", Duration: green,
			States: [NumHeads]Color{ColorRed, ColorRed, ColorGreen, ColorRed}},
		{Name: "ew_yellow", Duration: yellow,
			States: [NumHeads]Color{ColorRed, ColorRed, ColorYellow, ColorRed}},
		{Name: "ew_clear", Duration: allRed,
			States: [NumHeads]Color{ColorRed, ColorRed, ColorRed, ColorRed}},
	}}
}

// parseColor 将配置文件中的颜色名称解析为Color
func parseColor(s string) (Color, error) {
	switch s {
	case "green":
		return ColorGreen, nil
	case "yellow":
		return ColorYellow, nil
	case "red":
		return ColorRed, nil
	case "off", "":
		return ColorOff, nil
	}
	return ColorOff, fmt.Errorf("bad color %q (must be green/yellow/red/off)", s)
}

// ProgramFromConfig 根据配置构建信控程序
// 功能：解析内置程序参数或自定义相位序列
// 参数：cfg-信控配置
// 返回：构建的程序与可能的错误
// 算法说明：
// 1. two_phase：使用green/yellow参数构建两相位程序
// 2. protected_left：使用left_green/green/yellow/all_red参数构建多相位程序
// 3. custom：逐相位解析名称、时长与四个灯头颜色
func ProgramFromConfig(cfg config.Signal) (*Program, error) {
	switch cfg.Program {
	case "two_phase":
		return TwoPhaseProgram(cfg.Green, cfg.Yellow), nil
	case "protected_left":
		return ProtectedLeftProgram(cfg.LeftGreen, cfg.Green, cfg.Yellow, cfg.AllRed), nil
	case "custom":
		p := &Program{Phases: make([]Phase, 0, len(cfg.Phases))}
		for _, def := range cfg.Phases {
			phase := Phase{Name: def.Name, Duration: def.Duration}
			for h, name := range []string{def.NSThrough, def.NSLeft, def.EWThrough, def.EWLeft} {
				state, err := parseColor(name)
				if err != nil {
					return nil, fmt.Errorf("phase %s: %w", def.Name, err)
				}
				phase.States[h] = state
			}
			p.Phases = append(p.Phases, phase)
		}
		return p, nil
	}
	return nil, fmt.Errorf("bad signal program %q (must be two_phase/protected_left/custom)", cfg.Program)
}
