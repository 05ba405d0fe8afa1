// Package api 通过 REST 接口暴露工具集：列出工具定义、按方法名调用工具，
// 以及健康检查与指标端点。
package api
