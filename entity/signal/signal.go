package signal

import (
	"fmt"
	"math"

	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
)

// ctlRuntime 信控运行时数据结构
// 功能：存储循环信控的运行时状态，包括程序、相位索引、时间控制等
type ctlRuntime struct {
	program    *Program
	step       int32   // 当前相位索引
	totalTime  float64 // 当前相位总时长
	remainingT float64 // 当前相位剩余时间
}

// Controller 循环信控状态机
// 功能：按照预设的相位顺序和时间进行切换，派生各轴颜色、倒计时与行人信号
// 说明：状态切换仅由时间触发（外加可选的人工覆盖/相位设置接口），无终止状态。
// 外部每帧调用一次Update，读取接口均基于上一次Update写入的快照，无副作用
type Controller struct {
	runtime  ctlRuntime  // 运行时数据
	snapshot ctlRuntime  // snapshot，用于保存输出的数据
	buffer   *ctlRuntime // 数据buffer，用于交互式接口写入(optional)

	forced       *Color // 人工覆盖颜色，非nil时所有灯头输出该颜色且暂停自动循环
	forcedBuffer *Color // 人工覆盖buffer，用于交互式接口写入

	flashTime float64 // 行人闪烁预警窗口（秒，0禁用）
}

// NewController 创建循环信控状态机
// 功能：校验并装载信控程序，初始相位为程序的第一个相位
// 参数：program-信控程序，flashTime-行人闪烁预警窗口（秒）
// 返回：初始化完成的信控状态机实例
// 说明：程序非法属于配置错误，直接panic快速失败；
// 构造时装载的程序立即生效，后续Set则延迟到下一个更新周期
func NewController(program *Program, flashTime float64) *Controller {
	if err := program.Validate(); err != nil {
		log.Panicf("bad signal program: %v", err)
	}
	rt := ctlRuntime{
		program:    program,
		step:       0,
		totalTime:  program.Phases[0].Duration,
		remainingT: program.Phases[0].Duration,
	}
	return &Controller{
		runtime:   rt,
		snapshot:  rt,
		flashTime: flashTime,
	}
}

// Update 更新阶段，执行循环信控的核心逻辑
// 功能：按照预设程序推进时间并进行相位切换
// 参数：dt-时间步长（秒，>=0，0为合法空操作）
// 算法说明：
// 1. 处理buffer中的新程序/相位设置与人工覆盖
// 2. 人工覆盖生效时暂停自动循环
// 3. 从剩余时间中扣除dt；剩余时间耗尽时循环切换到下一相位，
//    超出部分结转到新相位（结转而非截断，保证周期闭合）
// 4. 将运行时数据写入快照供读取接口使用
func (c *Controller) Update(dt float64) {
	if c.buffer != nil {
		c.runtime = *c.buffer
		c.buffer = nil
	}
	c.forced = c.forcedBuffer

	if c.forced == nil {
		c.runtime.remainingT -= dt
		// 切换相位
		if c.runtime.remainingT <= 0 {
			for {
				c.runtime.step = (c.runtime.step + 1) % int32(len(c.runtime.program.Phases))
				c.runtime.remainingT += c.runtime.program.Phases[c.runtime.step].Duration
				if c.runtime.remainingT > 0 {
					c.runtime.totalTime = c.runtime.program.Phases[c.runtime.step].Duration
					break
				}
			}
		}
	}
	c.snapshot = c.runtime
}

// Set 设置信控程序
// 功能：设置新的信控程序，验证程序的有效性
// 参数：program-信控程序
// 返回：设置结果，如果程序无效则返回错误
// 说明：程序设置会延迟到下一个更新周期生效
func (c *Controller) Set(program *Program) error {
	if err := program.Validate(); err != nil {
		return fmt.Errorf("set signal program: %w", err)
	}
	c.buffer = &ctlRuntime{
		program:    program,
		step:       0,
		totalTime:  program.Phases[0].Duration,
		remainingT: program.Phases[0].Duration,
	}
	return nil
}

// SetPhase 设置信控相位
// 功能：设置当前相位索引和剩余时间
// 参数：offset-相位索引，remainingT-剩余时间（秒）
// 说明：相位设置会延迟到下一个更新周期生效，索引越界时取模回绕
func (c *Controller) SetPhase(offset int32, remainingT float64) {
	if c.buffer == nil {
		c.buffer = &ctlRuntime{program: c.runtime.program}
	}
	n := int32(len(c.buffer.program.Phases))
	c.buffer.step = ((offset % n) + n) % n
	c.buffer.totalTime = c.buffer.program.Phases[c.buffer.step].Duration
	c.buffer.remainingT = remainingT
}

// Force 启用人工覆盖
// 功能：强制所有灯头输出同一颜色，用于调试
// 参数：color-覆盖颜色
// 说明：覆盖生效期间自动循环暂停，倒计时固定为0；
// 覆盖会延迟到下一个更新周期生效
func (c *Controller) Force(color Color) {
	c.forcedBuffer = &color
}

// Unforce 取消人工覆盖
// 功能：恢复自动循环，从暂停处继续
func (c *Controller) Unforce() {
	c.forcedBuffer = nil
}

// Forced 检查人工覆盖是否生效
func (c *Controller) Forced() bool {
	return c.forced != nil
}

// PhaseFor 获取某通行轴直行灯头的当前颜色
// 功能：纯读取接口，无副作用
// 参数：axis-通行轴
func (c *Controller) PhaseFor(axis entity.Axis) Color {
	if c.forced != nil {
		return *c.forced
	}
	head := HeadNSThrough
	if axis == entity.AxisEW {
		head = HeadEWThrough
	}
	return c.snapshot.program.Phases[c.snapshot.step].States[head]
}

// ArrowFor 获取某通行轴保护左转箭头灯头的当前颜色
// 参数：axis-通行轴
// 说明：程序未使用箭头灯头时返回ColorOff
func (c *Controller) ArrowFor(axis entity.Axis) Color {
	if c.forced != nil {
		return *c.forced
	}
	head := HeadNSLeft
	if axis == entity.AxisEW {
		head = HeadEWLeft
	}
	return c.snapshot.program.Phases[c.snapshot.step].States[head]
}

// CountdownSeconds 获取距下一次相位切换的倒计时
// 返回：剩余时间向上取整的秒数（>=0）
// 说明：人工覆盖生效时固定返回0
func (c *Controller) CountdownSeconds() int32 {
	if c.forced != nil {
		return 0
	}
	return int32(math.Ceil(c.snapshot.remainingT))
}

// Step 获取当前相位索引
func (c *Controller) Step() int32 {
	return c.snapshot.step
}

// PhaseName 获取当前相位名称
func (c *Controller) PhaseName() string {
	return c.snapshot.program.Phases[c.snapshot.step].Name
}

// RemainingTime 获取当前相位剩余时间（秒）
func (c *Controller) RemainingTime() float64 {
	return c.snapshot.remainingT
}

// TotalTime 获取当前相位总时长（秒）
func (c *Controller) TotalTime() float64 {
	return c.snapshot.totalTime
}

// Program 获取当前生效的信控程序
func (c *Controller) Program() *Program {
	return c.snapshot.program
}
