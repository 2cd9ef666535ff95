package task

import (
	"errors"
	"sort"

	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/actor"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/randengine"
)

// spawnChoice 补员器的一种出生选择
type spawnChoice struct {
	kind     actor.Kind
	freeWalk bool
}

// kindChoices 配置键名到出生选择的映射
var kindChoices = map[string]spawnChoice{
	config.KindCar:            {kind: actor.KindCar},
	config.KindTruck:          {kind: actor.KindTruck},
	config.KindBicycle:        {kind: actor.KindBicycle},
	config.KindPedestrian:     {kind: actor.KindPedestrian},
	config.KindPedestrianFree: {kind: actor.KindPedestrian, freeWalk: true},
}

// spawner 补员器
// 功能：按种类权重随机出生实体，把在场实体数维持在目标值
// 说明：实体离场（行人走完、手动despawn）后在后续步骤补齐，
// 形成持续的车流与人流
type spawner struct {
	pool *actor.Pool
	rand *randengine.Engine

	population int // 目标在场实体数

	choices []spawnChoice
	weights []float64
}

// newSpawner 创建补员器
// 功能：解析种类权重表并构建离散分布
// 说明：权重表按键名排序以保证相同种子下的可复现性；
// 未知种类键名属于配置错误，panic快速失败
func newSpawner(pool *actor.Pool, e config.Engine, rand *randengine.Engine) *spawner {
	s := &spawner{
		pool:       pool,
		rand:       rand,
		population: e.Population,
	}
	keys := make([]string, 0, len(e.Mix))
	for key := range e.Mix {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		choice, ok := kindChoices[key]
		if !ok {
			log.Panicf("bad kind %q in engine mix", key)
		}
		if e.Mix[key] <= 0 {
			continue
		}
		s.choices = append(s.choices, choice)
		s.weights = append(s.weights, e.Mix[key])
	}
	if len(s.choices) == 0 {
		log.Panic("engine mix has no positive weight")
	}
	return s
}

// 单步内撞到满车道后的重抽次数上限，防止全场满员时空转
const laneFullRetries = 16

// Replenish 补齐在场实体
// 功能：按权重随机出生实体直到达到目标在场数
// 说明：池耗尽与车道无空位不是错误，留待后续步骤重试；
// 单条满车道只消耗一次重抽，不中断本步补员
func (s *spawner) Replenish() {
	retries := 0
	for s.pool.ActiveCount() < s.population {
		choice := s.choices[s.rand.DiscreteDistribution(s.weights)]
		if _, err := s.pool.Spawn(choice.kind, actor.SpawnOptions{FreeWalk: choice.freeWalk}); err != nil {
			switch {
			case errors.Is(err, actor.ErrLaneFull) && retries < laneFullRetries:
				retries++
			case errors.Is(err, actor.ErrPoolExhausted), errors.Is(err, actor.ErrLaneFull):
				log.Debugf("spawn paused (%v) at %d actors, retry next step", err, s.pool.ActiveCount())
				return
			default:
				log.Panicf("spawn failed: %v", err)
			}
		}
	}
}
