package renderer

import (
	"fmt"

	"github.com/Faultbox/pucktable/internal/engine/lighting"
)

var vertexShader = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform mat3 uNormal;

out vec3 vWorldPos;
out vec3 vNormal;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vWorldPos = world.xyz;
	vNormal = normalize(uNormal * aNormal);
	gl_Position = uProjection * uView * world;
}
`

const maxLights = lighting.MaxPointLights

// Phong shading with an ambient term and up to maxLights point lights.
var fragmentShader = fmt.Sprintf(`
#version 410 core

#define MAX_LIGHTS %d

in vec3 vWorldPos;
in vec3 vNormal;

uniform vec3 uColor;
uniform vec3 uEye;
uniform vec3 uAmbient;
uniform int uLightCount;
uniform vec3 uLightPos[MAX_LIGHTS];
uniform vec3 uLightColor[MAX_LIGHTS];

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	vec3 v = normalize(uEye - vWorldPos);
	vec3 light = uAmbient;
	for (int i = 0; i < uLightCount; i++) {
		vec3 l = normalize(uLightPos[i] - vWorldPos);
		float diff = max(dot(n, l), 0.0);
		float spec = pow(max(dot(v, reflect(-l, n)), 0.0), 30.0);
		light += uLightColor[i] * (diff + 0.2 * spec);
	}
	FragColor = vec4(uColor * light, 1.0);
}
`, maxLights)
