package task

import (
	"flag"
)

const (
	SelfName = "crossroad" // 本程序在日志与任务命名中的名字
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：在每个仿真步骤开始时进行准备工作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出系统状态信息
// 3. 补员：把在场实体数补齐到目标值
func (ctx *Context) prepare() {
	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) phase=%s actors=%d",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.controller.PhaseName(),
			ctx.pool.ActiveCount(),
		)
	}

	ctx.spawner.Replenish()
}

// update 更新阶段，每步执行一次
// 功能：执行主要的仿真逻辑
// 说明：先推进信控再推进实体池，实体池读取的是本步信控快照；
// 时钟DT以秒计，信控与实体池的Update都直接取秒步长，毫秒等
// 其他单位由外层驱动方在进入时钟前换算；
// 单写者顺序执行，无内部并发
func (ctx *Context) update() {
	ctx.controller.Update(ctx.clock.DT)
	ctx.pool.Update(ctx.clock.DT, ctx.controller)
}

// Run 运行
// 功能：执行完整的仿真循环直到到达结束步数或收到关闭指令
func (ctx *Context) Run() {
	ctx.Init()
	for {
		ctx.prepare()
		ctx.update()
		log.Debugf("step %d: update complete", ctx.clock.InternalStep)
		if ctx.clock.InternalStep+1 >= ctx.clock.END_STEP || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
	ctx.Close()
}
