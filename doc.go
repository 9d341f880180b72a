/*
go-retinaface decodes the raw output tensors of a RetinaFace style face
detection network into bounding boxes and facial landmark keypoints.

The library covers the numeric post processing only: prior (anchor) box
generation across the feature pyramid scales, two-class softmax scoring,
variance based box and landmark decoding, confidence filtering, and
Non-Maximum Suppression.  Running the network itself is left to whatever
inference runtime produces the tensors, eg. ONNX Runtime, TensorRT, or an
NPU SDK.

See example code and usage in the example subdirectory.
*/
package retinaface
