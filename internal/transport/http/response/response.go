package response

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 保证 data 不为 null
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// OKMsg 成功但带提示文案（如“Đã ẩn danh mục!”）
func OKMsg(msg string, data interface{}) Resp {
	return New(CodeOK, msg, data)
}

// Error customMsg 为空时用默认文案
func Error(code int, customMsg string) Resp {
	return Fail(code, customMsg, nil)
}

// Fail 失败且需要附带数据，例如字段级校验错误
func Fail(code int, customMsg string, data interface{}) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, data)
}
