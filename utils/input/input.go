package input

import (
	"context"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/crossroad-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/yaml.v2"
)

// log 输入模块的日志记录器
var log = logrus.WithField("module", "input")

// preCheckCache 检查缓存目录是否可用
// 功能：验证缓存目录存在且为目录
// 返回：true表示缓存可用，false表示禁用缓存
func preCheckCache(cacheDir string) bool {
	if cacheDir == "" {
		return false
	}
	info, err := os.Stat(cacheDir)
	if err != nil {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Warnf("cache dir %s unavailable: %v", cacheDir, err)
			return false
		}
		return true
	}
	if !info.IsDir() {
		log.Warnf("cache path %s is not a directory, cache disabled", cacheDir)
		return false
	}
	return true
}

// loadScenarioFile 从YAML文件加载场景
func loadScenarioFile(path string) (config.Scenario, error) {
	var s config.Scenario
	data, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.UnmarshalStrict(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// Load 加载场景数据
// 功能：根据配置加载场景（车道表、信控程序、引擎参数）
// 参数：c-配置对象，cacheDir-缓存目录（为空则禁用缓存）
// 返回：加载完成的场景配置
// 算法说明：
// 1. 未配置input时直接使用内联场景
// 2. 文件加载：从指定YAML文件加载场景（优先级高于MongoDB）
// 3. 缓存检查：缓存可用且存在缓存文件时优先从缓存加载
// 4. 数据库加载：从MongoDB集合中读取场景文档（bson）
// 5. 缓存写入：将数据库场景序列化为YAML写入缓存目录
// 说明：数据源不可用属于部署错误，直接panic快速失败
func Load(c config.Config, cacheDir string) config.Scenario {
	if c.Input == nil {
		return c.Scenario
	}
	p := c.Input.Scenario

	if p.File != "" {
		s, err := loadScenarioFile(p.File)
		if err != nil {
			log.Panicf("failed to load scenario from file: %v", err)
		}
		return s
	}

	useCache := preCheckCache(cacheDir)
	cachePath := filepath.Join(cacheDir, p.GetCachePath())
	if useCache {
		if _, err := os.Stat(cachePath); err == nil {
			s, err := loadScenarioFile(cachePath)
			if err == nil {
				log.Infof("scenario loaded from cache %s", cachePath)
				return s
			}
			log.Warnf("bad scenario cache %s: %v", cachePath, err)
		}
	}
	if p.OnlyCache {
		log.Panicf("scenario cache %s required but not available", cachePath)
	}

	if c.Input.URI == "" {
		log.Panic("scenario input requires a file or a MongoDB uri")
	}
	ctx := context.Background()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(c.Input.URI))
	if err != nil {
		log.Panicf("failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	var s config.Scenario
	coll := client.Database(p.DB).Collection(p.Col)
	if err := coll.FindOne(ctx, bson.M{}).Decode(&s); err != nil {
		log.Panicf("failed to load scenario from %s.%s: %v", p.DB, p.Col, err)
	}
	log.Infof("scenario loaded from MongoDB %s.%s", p.DB, p.Col)

	if useCache {
		if data, err := yaml.Marshal(s); err == nil {
			if err := os.WriteFile(cachePath, data, 0o644); err != nil {
				log.Warnf("failed to write scenario cache %s: %v", cachePath, err)
			}
		}
	}
	return s
}
