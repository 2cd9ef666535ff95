// 随机数引擎，包装了golang.org/x/exp/rand，提供了一些常用的随机数生成方法
package randengine

import (
	"flag"
	"log"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于调整随机数生成
)

// Engine 随机数引擎
// 功能：提供确定性的随机数生成功能，相同种子产生相同序列
// 说明：基于golang.org/x/exp/rand库；模拟引擎是单写者，无需加锁
type Engine struct {
	*rand.Rand // 底层随机数生成器
}

// New 创建随机数引擎
// 功能：初始化一个新的随机数引擎实例
// 参数：seed-随机数种子
// 返回：随机数引擎指针
// 说明：种子偏移量允许在不修改代码的情况下调整随机数序列
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// DiscreteDistribution 按给定概率分布生成随机数
// 功能：根据权重数组生成离散分布的随机数
// 参数：weight-权重数组，每个元素表示对应索引的概率权重
// 返回：随机生成的索引值（0到len(weight)-1）
// 算法说明：
// 1. 计算总权重：遍历权重数组计算总和
// 2. 生成随机数：在[0, 总权重)范围内生成随机数
// 3. 累积概率：遍历权重数组，累积概率直到超过随机数
// 4. 返回索引：返回第一个累积概率超过随机数的索引
// 5. 错误处理：如果算法异常则panic
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= e.Float64()
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	log.Panicf("randengine: DiscreteDistribution: sum: %f random: %f", sum, random)
	return -1
}

// PTrue 以指定概率返回true
// 功能：根据给定概率返回布尔值
// 参数：p-返回true的概率（0.0到1.0之间）
// 返回：true或false
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// JitterPct 对基准值施加±p的乘性随机扰动
// 功能：生成base*(1+u)的扰动值，u在[-p, p)内均匀分布
// 参数：base-基准值，p-最大扰动比例（如0.2表示±20%）
// 返回：扰动后的值
// 说明：用于生成个体差异化的出生速度、尺寸等属性
func (e *Engine) JitterPct(base, p float64) float64 {
	return base * (1 + p*(2*e.Float64()-1))
}

// UniformRange 在[low, high)范围内生成均匀分布的随机数
// 功能：生成指定范围内的随机浮点数
// 参数：low-下界，high-上界
// 返回：[low, high)范围内的随机数
func (e *Engine) UniformRange(low, high float64) float64 {
	return low + (high-low)*e.Float64()
}
