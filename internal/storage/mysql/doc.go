// Package mysql 持久化工具调用的审计记录。只保存调用元数据（方法、模式、
// 结果、耗时），从不保存账本状态。提供基于本地文件的实现和基于 MySQL 的实现，
// 二者都可作为 toolkit.Recorder 使用。
package mysql
