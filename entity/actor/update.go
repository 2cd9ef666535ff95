package actor

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	mapv2 "git.fiblab.net/sim/protos/v2/go/city/map/v2"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/entity/lane"
)

// SignalView 信控输出的只读视图
// 功能：运动更新所需的最小信控读取接口，引擎不直接依赖信控实现
type SignalView interface {
	PhaseFor(axis entity.Axis) mapv2.LightState // 直行灯头颜色
	ArrowFor(axis entity.Axis) mapv2.LightState // 保护左转箭头颜色
}

// gateColor 获取车道的放行颜色
// 说明：左转车道在箭头灯头点亮时受箭头控制，否则受同轴直行灯头控制
func gateColor(view SignalView, l *lane.Lane) mapv2.LightState {
	if l.Turn() == mapv2.LaneTurn_LANE_TURN_LEFT {
		if c := view.ArrowFor(l.Axis()); c != mapv2.LightState_LIGHT_STATE_UNAVAILABLE {
			return c
		}
	}
	return view.PhaseFor(l.Axis())
}

// Update 运动更新，执行实体池的核心逻辑
// 功能：将全部在场实体沿时间推进dt秒
// 参数：dt-时间步长（秒，>=0，0为合法空操作），view-信控输出视图
// 算法说明：
// 逐车道独立处理，从前车到后车（进度降序）遍历有序索引：
// 1. 候选进度 = 当前进度 + speed*dt/车道长度
// 2. 停车线约束：放行颜色非绿且当前位置在路口覆盖区外、候选位置
//    越入覆盖区时，候选进度回退为当前进度（压线停车）。判定基于
//    世界坐标覆盖区换算的s阈值，与进度归一化无关
// 3. 间距约束：存在进度更大的前车时，候选进度不得超过前车进度减
//    最小间距；该约束永不使实体退到更新前进度之后
// 4. 路径完成：候选进度超过1时按种类处理——机动车折返到0（持续
//    车流），折返会与新车道头车冲突时本tick停在1；自行车与车道
//    绑定行人离场
// 5. 提交进度并重算世界坐标与朝向，维持缓存一致性
// 自由行走实体按槽位顺序单独处理：沿固定方向向量平移，受同样的
// 停车线约束（基于移动线段与覆盖区的相交判定），到达世界边界时
// 反向折回
func (p *Pool) Update(dt float64, view SignalView) {
	if dt <= 0 {
		return
	}
	for _, l := range p.lanes.Lanes() {
		p.updateLane(l, dt, view)
	}
	p.updateFreeWalkers(dt, view)
}

// updateLane 更新单条车道上的全部实体
func (p *Pool) updateLane(l *lane.Lane, dt float64, view SignalView) {
	list := p.laneIndex[l.ID()]
	if list.Len() == 0 {
		return
	}
	green := gateColor(view, l) == mapv2.LightState_LIGHT_STATE_GREEN
	length := l.Length()

	// 折返再入的许可：车道头车（更新前）距起点不足最小间距时，
	// 折返车辆本tick停在末端；一旦有车折返，后续折返一律等待
	reentryLimit := list.First().Value.progress
	single := list.Len() == 1

	var despawns []int32
	var wrappedActors []*Actor
	for node := list.Last(); node != nil; {
		prev := node.Prev()
		a := node.Value
		cand := a.progress + a.speed*dt/length

		if !green && l.CrossesIntoFootprint(a.progress*length, cand*length) {
			cand = a.progress
		}

		next := node.Next()
		for next != nil && next.Value.wrapped {
			next = next.Next()
		}
		if next != nil {
			cand = math.Max(a.progress, math.Min(cand, next.Value.progress-p.minSpacing))
		}

		if cand > 1 {
			switch {
			case !a.kind.IsVehicle():
				despawns = append(despawns, a.id)
				cand = 1
			case single || reentryLimit >= p.minSpacing:
				cand = 0
				a.wrapped = true
				wrappedActors = append(wrappedActors, a)
				reentryLimit = 0
			default:
				cand = 1
			}
		}

		a.progress = cand
		a.node.S = cand
		a.refreshPose()
		node = prev
	}

	// 折返车辆键值变小破坏索引有序性，取出后重新归并
	if len(wrappedActors) > 0 {
		list.Merge(list.PopUnsorted())
		for _, a := range wrappedActors {
			a.wrapped = false
		}
	}
	for _, id := range despawns {
		p.Despawn(id)
	}
}

// updateFreeWalkers 更新全部自由行走实体
// 说明：按槽位顺序扫描，保证确定性
func (p *Pool) updateFreeWalkers(dt float64, view SignalView) {
	fp := p.lanes.Footprint()
	for i := range p.slots {
		a := &p.slots[i]
		if !a.active || a.LaneBound() {
			continue
		}
		step := a.speed * dt
		cand := geometry.Point{
			X: a.position.X + a.direction.X*step,
			Y: a.position.Y + a.direction.Y*step,
			Z: a.position.Z,
		}

		// 停车线约束：非绿灯时移动线段不得从覆盖区外触及覆盖区，
		// 步长再大也不能整步跨越
		if view.PhaseFor(a.axis) != mapv2.LightState_LIGHT_STATE_GREEN &&
			fp.CrossedInto(a.position, cand) {
			continue
		}

		// 世界边界折回：反转方向，本tick原地停留
		if !p.lanes.WorldContains(cand) {
			a.direction = geometry.Point{X: -a.direction.X, Y: -a.direction.Y}
			a.heading = math.Atan2(a.direction.Y, a.direction.X)
			continue
		}
		a.position = cand
	}
}
