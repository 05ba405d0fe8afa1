// Package config 加载守护进程的 JSON 配置，补全默认值，并从环境变量读取
// 运营账户私钥等敏感信息。
package config
