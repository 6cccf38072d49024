package service

import "errors"

// ErrEmptyFundCode 错误：基金代码为空
var ErrEmptyFundCode = errors.New("fund code is empty")

// ErrUnknownTradeType 错误：交易方向无效
var ErrUnknownTradeType = errors.New("trade type must be buy or sell")

// ErrInvalidTransaction 错误：交易金额/份额/净值必须为正
var ErrInvalidTransaction = errors.New("transaction amount, shares and net value must be positive")

// ErrInvalidImport 错误：导入文件不是合法的导出文档
var ErrInvalidImport = errors.New("import data is not a valid export document")
