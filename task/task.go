package task

import (
	"sync/atomic"

	"github.com/tsinghua-fib-lab/crossroad-sim-oss/clock"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/actor"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/lane"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/signal"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/input"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/randengine"
)

// Context 仿真任务上下文
// 功能：包含一次路口仿真任务的所有变量和状态，替代全局变量
// 说明：管理仿真系统的所有组件，包括时钟、车道表、信控、实体池与补员器
type Context struct {

	// 任务名
	job string
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 缓存文件夹
	cacheDir string

	// 随机数引擎
	rand *randengine.Engine
	// Lane几何表
	laneManager *lane.Manager
	// 信控状态机
	controller *signal.Controller
	// 实体池
	pool *actor.Pool
	// 补员器，维持目标在场实体数
	spawner *spawner

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig
}

// NewContext 创建新的仿真任务上下文
// 功能：初始化仿真系统的所有组件和配置
// 参数：job-任务名称，cacheDir-缓存目录，c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 创建时钟与随机数引擎（全局种子保证可复现）
// 2. 加载场景（内联配置、文件或MongoDB）并补全默认值
// 3. 依次构建车道几何表、信控状态机、实体池与补员器
// 说明：场景配置非法在此处panic快速失败，不进入运行循环
func NewContext(job string, cacheDir string, c config.Config) *Context {
	ctx := &Context{
		job:      job,
		cacheDir: cacheDir,
	}
	ctx.clock = clock.New(c.Control.Step)
	ctx.rand = randengine.New(c.Control.Seed)

	scenario := input.Load(c, ctx.cacheDir)
	ctx.runtimeConfig = config.NewRuntimeConfig(c, scenario)
	s := ctx.runtimeConfig.S

	ctx.laneManager = lane.NewManager(s)
	program, err := signal.ProgramFromConfig(s.Signal)
	if err != nil {
		log.Panicf("bad signal config: %v", err)
	}
	ctx.controller = signal.NewController(program, s.Signal.FlashTime)
	ctx.pool = actor.NewPool(ctx.laneManager, s.Engine, ctx.rand)
	ctx.spawner = newSpawner(ctx.pool, s.Engine, ctx.rand)

	return ctx
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) LaneManager() *lane.Manager {
	return ctx.laneManager
}

func (ctx *Context) Controller() *signal.Controller {
	return ctx.controller
}

func (ctx *Context) Pool() *actor.Pool {
	return ctx.pool
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 初始化仿真场景
// 功能：重置时钟并铺设初始实体
func (ctx *Context) Init() {
	ctx.clock.Init()

	s := ctx.runtimeConfig.S
	log.Infof("Lane: %v", ctx.laneManager.Count())
	log.Infof("Signal: %v phases, cycle %vs",
		len(ctx.controller.Program().Phases), ctx.controller.Program().CycleLength())
	log.Infof("Pool: capacity %v, population %v", ctx.pool.Capacity(), s.Engine.Population)

	ctx.spawner.Replenish()
}

// Close 关闭仿真任务
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
